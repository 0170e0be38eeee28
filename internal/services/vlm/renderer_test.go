package vlm

import (
	"context"
	"os"
	"os/exec"
	"testing"
)

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	if os.Getenv("RENDER_HELPER_MODE") == "fail" {
		os.Exit(1)
	}
	os.Exit(0)
}

func stubRenderCommand(t *testing.T, capturedArgs *[]string, mode string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		*capturedArgs = append([]string(nil), args...)
		if mode == "success" && len(args) > 0 {
			// The real binary writes <prefix>.png before exiting.
			prefix := args[len(args)-1]
			if err := os.WriteFile(prefix+".png", []byte("fake-png"), 0o644); err != nil {
				t.Fatalf("write stub output: %v", err)
			}
		}
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "RENDER_HELPER_MODE="+mode)
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
}

func TestPopplerRendererArguments(t *testing.T) {
	var capturedArgs []string
	stubRenderCommand(t, &capturedArgs, "success")

	renderer := NewPopplerRenderer("pdftoppm", 96)
	image, err := renderer.RenderPage(context.Background(), "/library/Doe-2019-Networks.pdf", 5)
	if err != nil {
		t.Fatalf("RenderPage returned error: %v", err)
	}
	if string(image) != "fake-png" {
		t.Fatalf("unexpected image bytes %q", image)
	}

	want := map[string]string{"-r": "96", "-f": "5", "-l": "5"}
	for flag, value := range want {
		found := false
		for i, arg := range capturedArgs {
			if arg == flag {
				if i+1 >= len(capturedArgs) || capturedArgs[i+1] != value {
					t.Fatalf("flag %s has value %v, want %s (args %v)", flag, capturedArgs[i+1:], value, capturedArgs)
				}
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("expected flag %s in args %v", flag, capturedArgs)
		}
	}
	if capturedArgs[0] != "-png" {
		t.Fatalf("expected -png first, got %v", capturedArgs)
	}
	if capturedArgs[len(capturedArgs)-2] != "/library/Doe-2019-Networks.pdf" {
		t.Fatalf("expected input before output prefix, got %v", capturedArgs)
	}
}

func TestPopplerRendererFailure(t *testing.T) {
	var capturedArgs []string
	stubRenderCommand(t, &capturedArgs, "fail")

	renderer := NewPopplerRenderer("", 0)
	if _, err := renderer.RenderPage(context.Background(), "/library/doc.pdf", 1); err == nil {
		t.Fatal("expected error when renderer exits non-zero")
	}
}

func TestPopplerRendererRejectsBadPage(t *testing.T) {
	renderer := NewPopplerRenderer("pdftoppm", 72)
	if _, err := renderer.RenderPage(context.Background(), "/library/doc.pdf", 0); err == nil {
		t.Fatal("expected error for page 0")
	}
}
