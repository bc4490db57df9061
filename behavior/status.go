// Package behavior implements the BTflow behavior-tree core: the Status
// enum, the Behavior lifecycle contract, the composite/decorator library,
// the async-leaf bridge, and the Tree that walks a root once per tick.
//
// Node ticking is driven by the package-level Tick function rather than by
// nodes calling each other's Update directly, so that every node in the
// tree — leaves and composites alike — goes through the same
// initialise/update/terminate lifecycle regardless of its position.
package behavior

// Status is the outcome of a behavior node's tick. Unlike
// github.com/joeycumines/go-behaviortree's three-value bt.Status, BTflow
// carries a fourth value, Invalid, matching the py_trees semantics the
// source program was built on: a node that has never run, or that was
// explicitly interrupted, is distinguishable from one that is merely
// mid-flight. See SPEC_FULL.md §3.9 for how this reconciles with
// go-behaviortree's own Status at the Tree/bt.Node adaptation boundary.
type Status int

const (
	// Invalid means the node has never run, or was interrupted/reset and
	// has not yet re-initialised.
	Invalid Status = iota
	// Running means the node's update is still in progress.
	Running
	// Success means the node completed successfully.
	Success
	// Failure means the node completed unsuccessfully.
	Failure
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case Invalid:
		return "INVALID"
	case Running:
		return "RUNNING"
	case Success:
		return "SUCCESS"
	case Failure:
		return "FAILURE"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether s is a completed outcome (SUCCESS or FAILURE).
func (s Status) Terminal() bool {
	return s == Success || s == Failure
}

// ParseStatus parses the checkpoint wire-format name (§6.2) back into a
// Status. Unknown names map to Invalid.
func ParseStatus(name string) Status {
	switch name {
	case "RUNNING":
		return Running
	case "SUCCESS":
		return Success
	case "FAILURE":
		return Failure
	default:
		return Invalid
	}
}
