package internal

import (
	"fmt"
	"io"
	"os"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// SimpleSpinner animates message on stdout while op runs, then rewrites the
// line with a success or failure mark. In verbose mode the animation would
// interleave with log output, so op runs bare.
func SimpleSpinner(message string, op func() error) error {
	return spin(os.Stdout, message, op)
}

func spin(w io.Writer, message string, op func() error) error {
	if VerboseMode {
		return op()
	}

	stop := make(chan struct{})
	spun := make(chan struct{})
	go func() {
		defer close(spun)
		ticker := time.NewTicker(90 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			fmt.Fprintf(w, "\r%s %s", spinnerFrames[i%len(spinnerFrames)], message)
			select {
			case <-stop:
				return
			case <-ticker.C:
			}
		}
	}()

	err := op()
	close(stop)
	<-spun

	fmt.Fprint(w, "\r\033[K")
	if err != nil {
		fmt.Fprintf(w, "❌ Failed: %s", message)
	} else {
		fmt.Fprintf(w, "✅ %s", message)
	}
	return err
}

// FinishLine ends the status line a SimpleSpinner sequence left open.
func FinishLine() {
	if !VerboseMode {
		fmt.Println()
	}
}
