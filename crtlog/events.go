package crtlog

// This file's helpers are deliberately thin: each one just picks the right
// level and field names so every executor/timer call site logs consistently,
// the way eventloop/logging.go centralizes its LogEntry field names rather
// than letting each call site invent its own.

// WorkerSpawned logs a new worker goroutine starting under executor name.
func WorkerSpawned(executor string, worker int) {
	Default().Debug().Str("executor", executor).Int("worker", worker).Log("worker spawned")
}

// WorkerIdleExit logs a worker goroutine exiting after its idle timeout
// elapsed with no work (spec.md §4.8, §4 supplemented features: the worker
// record survives and is reactivated on the next foreign enqueue).
func WorkerIdleExit(executor string, worker int) {
	Default().Debug().Str("executor", executor).Int("worker", worker).Log("worker exited after idle timeout")
}

// WorkerReactivated logs a worker's goroutine being respawned after a
// foreign Enqueue found it idle-exited.
func WorkerReactivated(executor string, worker int) {
	Default().Debug().Str("executor", executor).Int("worker", worker).Log("worker reactivated")
}

// TaskPanicked logs a recovered panic from Task.Invoke, executed by one of
// this module's executors.
func TaskPanicked(executor string, worker int, recovered any) {
	Default().Warning().Str("executor", executor).Int("worker", worker).Interface("recovered", recovered).Log("task panicked")
}

// ExecutorShutdown logs an executor completing shutdown, with the number of
// still-queued tasks the caller reports as cancelled. Manual reports the
// tasks it cancelled; the other executors always pass 0.
func ExecutorShutdown(executor string, cancelledTasks int) {
	Default().Info().Str("executor", executor).Int("cancelled_tasks", cancelledTasks).Log("executor shut down")
}

// TimerRegistered logs a new timer being added to the timer queue.
func TimerRegistered(name string, oneShot bool) {
	Default().Debug().Str("timer", name).Bool("one_shot", oneShot).Log("timer registered")
}

// TimerCancelled logs a timer being removed from the timer queue, either by
// explicit Cancel or because a one-shot timer fired.
func TimerCancelled(name string, fired bool) {
	Default().Debug().Str("timer", name).Bool("fired", fired).Log("timer cancelled")
}

// ExecutorExceptionWrapped logs a task failing to be dispatched onto an
// executor. The result package calls it when a continuation is wrapped in
// crterrors.ExecutorException and resumed inline instead; the timer queue
// calls it when a timer callback is rejected, in which case that callback
// does not run.
func ExecutorExceptionWrapped(executor string, cause error) {
	Default().Err().Str("executor", executor).Err(cause).Log("dispatch onto executor failed")
}
