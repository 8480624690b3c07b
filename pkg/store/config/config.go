package config

type Config struct {
	Musync      Musync                `toml:"musync"`      // Application metadata
	General     General               `toml:"general"`     // Settings every run starts from
	Profiles    map[string]Profile    `toml:"profiles"`    // Named overlays, selected with --config
	Transcoders map[string]Transcoder `toml:"transcoders"` // "<from>-to-<to>" converters
}

type Musync struct {
	Version string `toml:"version"` // Application version
}

type General struct {
	Root         string   `toml:"root"`          // library root
	LockDB       string   `toml:"lockdb"`        // lock journal, default <root>/.musync.lock
	Add          string   `toml:"add"`           // copy | move | link | symlink
	Hash         string   `toml:"hash"`          // sha256 | blake2b
	CheckHash    *bool    `toml:"checkhash"`     // verify copies
	CheckHashExt []string `toml:"checkhash-ext"` // only verify these extensions, empty means all
	TargetPath   string   `toml:"targetpath"`    // text/template rendering a root-relative path
	NoFixme      *bool    `toml:"no-fixme"`      // accept files with incomplete metadata
	Tmp          string   `toml:"tmp"`           // transcode scratch directory
	Profiles     []string `toml:"profiles,omitempty"`
}

// Profile overlays General. Unset fields keep the value beneath them.
type Profile struct {
	General
	Include []string `toml:"include"`
}

type Transcoder struct {
	// Command is an argv; "{{ .Src }}" and "{{ .Dst }}" are substituted.
	Command []string `toml:"command"`
}

func (g General) CheckHashEnabled() bool {
	return g.CheckHash == nil || *g.CheckHash
}

func (g General) NoFixmeEnabled() bool {
	return g.NoFixme != nil && *g.NoFixme
}

// Overlay returns g with every value set in o replacing the one in g.
func (g General) Overlay(o General) General {
	if o.Root != "" {
		g.Root = o.Root
	}
	if o.LockDB != "" {
		g.LockDB = o.LockDB
	}
	if o.Add != "" {
		g.Add = o.Add
	}
	if o.Hash != "" {
		g.Hash = o.Hash
	}
	if o.CheckHash != nil {
		g.CheckHash = o.CheckHash
	}
	if len(o.CheckHashExt) > 0 {
		g.CheckHashExt = o.CheckHashExt
	}
	if o.TargetPath != "" {
		g.TargetPath = o.TargetPath
	}
	if o.NoFixme != nil {
		g.NoFixme = o.NoFixme
	}
	if o.Tmp != "" {
		g.Tmp = o.Tmp
	}
	return g
}
