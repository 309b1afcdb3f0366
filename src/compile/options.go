package compile

import "github.com/BurntSushi/toml"

// Options configures one assembly run (§6/C11), grounded on
// assembler_options.rs's AssemblerOptions and loadable the way
// lookbusy1344-arm_emulator's own TOML-tagged config struct is: a plain
// struct with `toml:` tags decoded via BurntSushi/toml.
type Options struct {
	Origin       uint16   `toml:"origin"`
	MaxCodeSize  int      `toml:"max_code_size"`
	IncludeDirs  []string `toml:"include_dirs"`
	Defines      []string `toml:"defines"`
	Z80N         bool     `toml:"z80n"`
	CSpect       bool     `toml:"cspect"`
	Verbose      bool     `toml:"verbose"`
	ExportLabels string   `toml:"export_labels"`
}

// DefaultOptions returns the zero-configuration defaults: origin 0,
// 64K code-size ceiling, Z80N/CSpect extensions disabled, no verbose
// stage logging.
func DefaultOptions() *Options {
	return &Options{
		Origin:      0,
		MaxCodeSize: 65536,
	}
}

// LoadOptions decodes Options from a TOML file at path, starting from
// DefaultOptions so fields the file omits keep their defaults.
func LoadOptions(path string) (*Options, error) {
	opts := DefaultOptions()
	if _, err := toml.DecodeFile(path, opts); err != nil {
		return nil, err
	}
	return opts, nil
}
