package build

// CurrentCommit is set at build time with -ldflags
var CurrentCommit string

// BuildType selects the default network of the binary.
var BuildType int

const (
	BuildMainnet = 0x1
	BuildTestnet = 0x2
	BuildDebug   = 0x3
)

func BuildTypeString() string {
	switch BuildType {
	case BuildMainnet:
		return "+mainnet"
	case BuildTestnet:
		return "+testnet"
	case BuildDebug:
		return "+debug"
	default:
		return "+huh?"
	}
}

// DefaultNetwork is the network written to a new config.
func DefaultNetwork() string {
	if BuildType == BuildMainnet {
		return "mainnet"
	}
	return "testnet"
}

const BuildVersion = "0.3.0"

func UserVersion() string {
	return BuildVersion + BuildTypeString() + CurrentCommit
}
