package program

import (
	"testing"
	"time"
)

func TestWaitTasksBlocksUntilReleased(t *testing.T) {
	prog := New()
	prog.TrackTaskAdd()

	done := make(chan struct{})
	go func() {
		prog.WaitTasks()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("WaitTasks returned before the task was released")
	case <-time.After(20 * time.Millisecond):
	}

	prog.TrackTaskRelease()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WaitTasks did not return after the task was released")
	}
}
