// Package process wraps os/exec with the primitives a capture supervisor
// needs: spawning into a dedicated process group, interrupt and forced kill
// signals, and reaping with a normalized exit code.
//
// A Handle is owned by exactly one caller. Wait may be called once; after it
// returns the handle is spent and signals become no-ops.
//
//	h, err := process.Start([]string{"ffmpeg", "-i", "..."}, logFile, tail)
//	if err != nil {
//	    return err
//	}
//	h.Interrupt()
//	code := h.Wait()
package process
