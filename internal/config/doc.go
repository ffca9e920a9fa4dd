// Package config loads mcmark settings.
//
// Settings are resolved in layers, higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  4. MCMARK_* environment    │  ← Highest priority
//	├─────────────────────────────┤
//	│  3. .env file               │
//	├─────────────────────────────┤
//	│  2. mcmark.toml / .yaml     │
//	├─────────────────────────────┤
//	│  1. Built-in defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// A config file looks like:
//
//	[files]
//	patterns = ["**/*.mcfunction"]
//
//	[sync]
//	debounce = "100ms"
//
//	[decoration]
//	hide_marker = true
//	border_color = "#32ff32"
//	border_alpha = 0.5
//	border_width = 2
//
//	[log]
//	level = "info"
//
//	[lua]
//	script = "hooks.lua"
//
// YAML files use the same keys.
package config
