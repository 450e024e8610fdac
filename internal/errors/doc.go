// Package errors provides coded, actionable errors for impulse.
//
// Every error raised by the guard layer or the configuration loader carries
// a code that maps to a registered template:
//   - a short message describing the error
//   - a longer explanation
//   - a documentation URL
//
// # Error Categories
//
//   - guard: illegal calls inside read-only contexts (E1xx)
//   - config: configuration loading and validation (E2xx)
//   - cli: command line usage (E3xx)
//
// # Usage
//
//	err := errors.New("E103").
//	    WithCaller(1).
//	    WithSuggestion("Move the write into the Watch onChange callback")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E103: Impulse written inside a Watch computation
//	//
//	//   app/counter.go:42
//	//
//	//   Hint: Move the write into the Watch onChange callback
//	//
//	//   Learn more: https://impulse.vango.dev/errors/E103
package errors
