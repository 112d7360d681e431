package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
	logging "github.com/ipfs/go-log/v2"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

var log = logging.Logger("cfg")

// EnvPrefix is the prefix of environment variables that override config
// file values, eg WALRUS_BRIDGE_NETWORK=mainnet
const EnvPrefix = "WALRUS_BRIDGE"

// FromFile loads config from a specified file overriding defaults specified in
// the def parameter. If file does not exist or is empty defaults are assumed.
func FromFile(path string, def interface{}) (interface{}, error) {
	file, err := os.Open(path)
	switch {
	case os.IsNotExist(err):
		log.Debugw("config file not found, using defaults", "path", path)
		return def, nil
	case err != nil:
		return nil, err
	}

	defer file.Close() //nolint:errcheck // The file is RO
	return FromReader(file, def)
}

// FromReader loads config from a reader instance.
func FromReader(reader io.Reader, def interface{}) (interface{}, error) {
	cfg := def
	_, err := toml.NewDecoder(reader).Decode(cfg)
	if err != nil {
		return nil, err
	}

	if c, ok := cfg.(*Config); ok {
		applyNetworkDefaults(c)
	}

	err = envconfig.Process(EnvPrefix, cfg)
	if err != nil {
		return nil, fmt.Errorf("processing env vars overrides: %s", err)
	}

	return cfg, nil
}

// applyNetworkDefaults fills the fields of the built-in networks that the
// config file leaves empty. The toml decoder replaces map entries wholesale.
func applyNetworkDefaults(cfg *Config) {
	if cfg.Networks == nil {
		cfg.Networks = make(map[string]*NetworkConfig)
	}
	for name, def := range defNetworks() {
		cur, ok := cfg.Networks[name]
		if !ok || cur == nil {
			cfg.Networks[name] = def
			continue
		}
		cv := reflect.ValueOf(cur).Elem()
		dv := reflect.ValueOf(def).Elem()
		for i := 0; i < cv.NumField(); i++ {
			f := cv.Field(i)
			if f.Kind() == reflect.String && f.String() == "" {
				f.SetString(dv.Field(i).String())
			}
		}
	}
}

// ActiveNetwork returns the configuration of the selected network.
func (c *Config) ActiveNetwork() (*NetworkConfig, error) {
	n, ok := c.Networks[c.Network]
	if !ok || n == nil {
		return nil, fmt.Errorf("network '%s' is not configured", c.Network)
	}
	return n, nil
}

// Validate checks the values that cannot be checked by the toml decoder.
func (c *Config) Validate() error {
	n, err := c.ActiveNetwork()
	if err != nil {
		return err
	}
	if n.GatewayURL == "" {
		return fmt.Errorf("network '%s': GatewayURL must be set", c.Network)
	}
	if n.Treasury == "" {
		return fmt.Errorf("network '%s': Treasury must be set", c.Network)
	}
	if n.BridgedToken == "" || n.StorageToken == "" {
		return fmt.Errorf("network '%s': BridgedToken and StorageToken must be set", c.Network)
	}
	if _, err := decimal.NewFromString(n.TxCostAllowance); err != nil {
		return fmt.Errorf("network '%s': TxCostAllowance: %w", c.Network, err)
	}
	for name, pct := range map[string]string{
		"Fees.SponsoredPercent":   c.Fees.SponsoredPercent,
		"Fees.UnsponsoredPercent": c.Fees.UnsponsoredPercent,
	} {
		d, err := decimal.NewFromString(pct)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if d.IsNegative() || d.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return fmt.Errorf("%s: %s must be in the range [0, 1)", name, d)
		}
	}
	if c.Retry.ClaimMaxAttempts < 1 || c.Retry.FeeMaxAttempts < 1 || c.Retry.QuoteMaxAttempts < 1 ||
		c.Retry.InitiateMaxAttempts < 1 || c.Retry.FinalizeMaxAttempts < 1 {
		return fmt.Errorf("Retry: max attempts must be at least 1")
	}
	if c.Retry.AttestationTimeout <= 0 {
		return fmt.Errorf("Retry.AttestationTimeout must be positive")
	}
	if c.Swap.SlippageBps >= 10000 {
		return fmt.Errorf("Swap.SlippageBps must be less than 10000")
	}
	return nil
}

// ConfigUpdate takes in a config and a default config and optionally comments out default values
func ConfigUpdate(cfgCur, cfgDef interface{}, comment bool) ([]byte, error) {
	var nodeStr, defStr string
	if cfgDef != nil {
		buf := new(bytes.Buffer)
		e := toml.NewEncoder(buf)
		if err := e.Encode(cfgDef); err != nil {
			return nil, fmt.Errorf("encoding default config: %w", err)
		}

		defStr = buf.String()
	}

	{
		buf := new(bytes.Buffer)
		e := toml.NewEncoder(buf)
		if err := e.Encode(cfgCur); err != nil {
			return nil, fmt.Errorf("encoding config: %w", err)
		}

		nodeStr = buf.String()
	}

	if comment {
		// default lines per section, so that the same key in two networks
		// is only commented out when it matches the default of its own section
		defaults := map[string]struct{}{}
		sectionRx := regexp.MustCompile(`\[(.+)]`)
		var section string
		for _, l := range strings.Split(defStr, "\n") {
			l = strings.TrimSpace(l)
			if len(l) == 0 || l[0] == '#' {
				continue
			}
			if l[0] == '[' {
				if m := sectionRx.FindStringSubmatch(l); len(m) == 2 {
					section = m[1]
				}
				continue
			}
			defaults[section+"|"+l] = struct{}{}
		}

		nodeLines := strings.Split(nodeStr, "\n")
		var outLines []string
		section = ""

		for i, line := range nodeLines {
			// if this is a section, track it
			trimmed := strings.TrimSpace(line)
			if len(trimmed) > 0 && trimmed[0] == '[' {
				m := sectionRx.FindStringSubmatch(trimmed)
				if len(m) != 2 {
					return nil, fmt.Errorf("section didn't match (line %d)", i)
				}
				section = m[1]

				// never comment sections
				outLines = append(outLines, line)
				continue
			}

			pad := strings.Repeat(" ", len(line)-len(strings.TrimLeftFunc(line, unicode.IsSpace)))

			// see if we have docs for this field
			if lf := strings.Fields(line); len(lf) > 1 {
				if doc := findDoc(cfgCur, section, lf[0]); doc != nil {
					if len(doc.Comment) > 0 {
						for _, docLine := range strings.Split(doc.Comment, "\n") {
							outLines = append(outLines, pad+"# "+docLine)
						}
						outLines = append(outLines, pad+"#")
					}
					outLines = append(outLines, pad+"# type: "+doc.Type)
				}
				outLines = append(outLines, pad+"# env var: "+EnvPrefix+"_"+envName(section, lf[0]))
			}

			// if there is the same line in the default config, comment it out in output
			if _, found := defaults[section+"|"+trimmed]; (cfgDef == nil || found) && len(line) > 0 {
				line = pad + "#" + line[len(pad):]
			}
			outLines = append(outLines, line)
			if len(line) > 0 {
				outLines = append(outLines, "")
			}
		}

		nodeStr = strings.Join(outLines, "\n")
	}

	// sanity-check that the updated config parses the same way as the current one
	if cfgDef != nil {
		cfgUpdated, err := FromReader(strings.NewReader(nodeStr), cfgDef)
		if err != nil {
			return nil, fmt.Errorf("parsing updated config: %w", err)
		}

		if !reflect.DeepEqual(cfgCur, cfgUpdated) {
			return nil, fmt.Errorf("updated config didn't match current config")
		}
	}

	return []byte(nodeStr), nil
}

func envName(section, key string) string {
	if section == "" {
		return strings.ToUpper(key)
	}
	return strings.ToUpper(strings.ReplaceAll(section, ".", "_")) + "_" + strings.ToUpper(key)
}
