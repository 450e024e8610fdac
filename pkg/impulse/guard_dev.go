//go:build !impulse_prod

package impulse

// GuardsEnabled reports whether this build checks for illegal calls inside
// read-only contexts. Build with -tags impulse_prod to compile the checks
// out.
const GuardsEnabled = true

// allow reports whether op may proceed. Inside a read-only context it
// reports a violation and returns false.
func (rt *Runtime) allow(op Operation) bool {
	if rt.context == ContextNone || rt.guardMode == GuardOff {
		return true
	}
	rt.violate(op)
	return false
}
