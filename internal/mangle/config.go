package mangle

// Config holds the spelling choices of the mangler and of the C library
// driver. It is the [mangle] table of ffigen.toml.
type Config struct {
	CppSeparator string `toml:"cpp_separator"`
	RootPrefix   string `toml:"root_prefix"`
	CSeparator   string `toml:"c_separator"`
	StructSuffix string `toml:"struct_suffix"`
	This         string `toml:"this"`
	Return       string `toml:"return"`
	Ctor         string `toml:"ctor"`
	Dtor         string `toml:"dtor"`
}

// DefaultConfig returns the built-in spelling.
func DefaultConfig() Config {
	return Config{
		CppSeparator: "::",
		RootPrefix:   "upp_",
		CSeparator:   "_",
		StructSuffix: "_struct_",
		This:         "_upp_this",
		Return:       "_upp_return",
		Ctor:         "_new",
		Dtor:         "_delete",
	}
}

// WithDefaults fills every empty field from DefaultConfig.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	fill := func(v *string, d string) {
		if *v == "" {
			*v = d
		}
	}
	fill(&c.CppSeparator, def.CppSeparator)
	fill(&c.RootPrefix, def.RootPrefix)
	fill(&c.CSeparator, def.CSeparator)
	fill(&c.StructSuffix, def.StructSuffix)
	fill(&c.This, def.This)
	fill(&c.Return, def.Return)
	fill(&c.Ctor, def.Ctor)
	fill(&c.Dtor, def.Dtor)
	return c
}
