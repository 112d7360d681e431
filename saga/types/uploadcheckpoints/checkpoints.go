package uploadcheckpoints

import "fmt"

// Checkpoint is the last step of an upload that completed successfully.
type Checkpoint int

const (
	Accepted Checkpoint = iota
	Quoted
	FeeCollected
	BridgeInitiated
	BridgeAttested
	BridgeClaimed
	Swapped
	BlobRegistered
	BlobStored
	Complete
)

var names = map[Checkpoint]string{
	Accepted:        "Accepted",
	Quoted:          "Quoted",
	FeeCollected:    "FeeCollected",
	BridgeInitiated: "BridgeInitiated",
	BridgeAttested:  "BridgeAttested",
	BridgeClaimed:   "BridgeClaimed",
	Swapped:         "Swapped",
	BlobRegistered:  "BlobRegistered",
	BlobStored:      "BlobStored",
	Complete:        "Complete",
}

var strToCP map[string]Checkpoint

func init() {
	strToCP = make(map[string]Checkpoint, len(names))
	for cp, str := range names {
		strToCP[str] = cp
	}
}

func (c Checkpoint) String() string {
	return names[c]
}

func FromString(str string) (Checkpoint, error) {
	cp, ok := strToCP[str]
	if !ok {
		return Accepted, fmt.Errorf("unrecognized checkpoint %s", str)
	}
	return cp, nil
}

// State is the step of the saga an upload is in (or about to enter).
type State string

const (
	Quoting          State = "QUOTING"
	FeeCollecting    State = "FEE_COLLECTING"
	BridgeInitiating State = "BRIDGE_INITIATING"
	BridgeAttesting  State = "BRIDGE_ATTESTING"
	BridgeClaiming   State = "BRIDGE_CLAIMING"
	Swapping         State = "SWAPPING"
	Finalizing       State = "FINALIZING"
	Done             State = "DONE"
	Failed           State = "FAILED"
)

// Next is the state entered once checkpoint c has been reached.
func (c Checkpoint) Next() State {
	switch c {
	case Accepted:
		return Quoting
	case Quoted:
		return FeeCollecting
	case FeeCollected:
		return BridgeInitiating
	case BridgeInitiated:
		return BridgeAttesting
	case BridgeAttested:
		return BridgeClaiming
	case BridgeClaimed:
		return Swapping
	case Swapped, BlobRegistered, BlobStored:
		return Finalizing
	case Complete:
		return Done
	}
	return Failed
}
