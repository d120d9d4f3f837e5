package fs_test

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/calvinalkan/crm/pkg/fs"
)

func Test_Injected_Passes_Through_When_No_Failure_Configured(t *testing.T) {
	t.Parallel()

	inj := fs.NewInjected(fs.NewReal())
	path := filepath.Join(t.TempDir(), "clients.csv")

	err := inj.WriteFileAtomic(path, []byte("Name\n"), 0o644)
	if err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}

	got, err := inj.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if string(got) != "Name\n" {
		t.Fatalf("content=%q, want %q", got, "Name\n")
	}

	if got, want := inj.Calls(fs.OpWriteFileAtomic), 1; got != want {
		t.Fatalf("calls=%d, want=%d", got, want)
	}
}

func Test_Injected_Returns_Configured_Error_When_Op_Armed(t *testing.T) {
	t.Parallel()

	inj := fs.NewInjected(fs.NewReal())
	path := filepath.Join(t.TempDir(), "clients.csv")

	inj.FailOn(fs.OpWriteFileAtomic, syscall.ENOSPC)

	err := inj.WriteFileAtomic(path, []byte("Name\n"), 0o644)
	if !errors.Is(err, syscall.ENOSPC) {
		t.Fatalf("err=%v, want ENOSPC", err)
	}

	if !fs.IsInjected(err) {
		t.Fatalf("IsInjected(%v)=false, want true", err)
	}

	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatalf("file should not exist after injected failure, stat err=%v", statErr)
	}

	inj.Reset()

	err = inj.WriteFileAtomic(path, []byte("Name\n"), 0o644)
	if err != nil {
		t.Fatalf("WriteFileAtomic after reset: %v", err)
	}
}

func Test_IsInjected_Returns_False_When_Error_Is_Real(t *testing.T) {
	t.Parallel()

	inj := fs.NewInjected(fs.NewReal())

	_, err := inj.ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}

	if fs.IsInjected(err) {
		t.Fatalf("IsInjected(%v)=true, want false", err)
	}

	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err=%v, want ErrNotExist", err)
	}
}
