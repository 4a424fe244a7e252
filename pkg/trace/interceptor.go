package trace

// Interceptor runs actions around a call. Nil actions are skipped.
type Interceptor struct {
	Before  func()
	After   func(result any)
	OnError func(err error)
}

// Invoke runs Before, then fn, then OnError if fn failed. After always runs
// last, also when fn panics, and receives the result of fn.
func (r Interceptor) Invoke(fn func() (any, error)) (result any, err error) {
	defer func() {
		if r.After != nil {
			r.After(result)
		}
	}()
	if r.Before != nil {
		r.Before()
	}
	result, err = fn()
	if err != nil && r.OnError != nil {
		r.OnError(err)
	}
	return result, err
}
