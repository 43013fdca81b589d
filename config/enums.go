package config

//go:generate go tool go-enum --marshal --names --mustparse

// Style of generated identifiers ($name token).
// ENUM(default, camel, lowerCamel, snake, kebab)
type NameStyle int
