package timing

// Measure times a single invocation of fn against the metric. The timer
// starts before fn runs and is resolved exactly once on every exit path:
// a normal return commits the elapsed time, while an error or a panic
// cancels the timer without recording a value or an error counter.
//
// fn's result and error are passed through unchanged; a panic is
// re-raised after the timer is cancelled. Measurement never alters the
// outcome of the measured body.
func Measure[T any](d *Distribution, fn func() (T, error)) (T, error) {
	id := d.Start()

	committed := false
	defer func() {
		if !committed {
			d.Cancel(id)
		}
	}()

	value, err := fn()
	if err != nil {
		return value, err
	}

	committed = true
	d.StopAndAccumulate(id)
	return value, nil
}

// Time measures a body with no result value. Shorthand for Measure with
// an empty result.
func Time(d *Distribution, fn func() error) error {
	_, err := Measure(d, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}
