// Package config handles loading and parsing the kbchat configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/kbchat/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//
// # Default Values
//
//   - API URL: http://127.0.0.1:8000
//   - Poll interval: 2s
//   - Request timeout: 10s (status and scrape calls)
//   - Chat timeout: 2m (answers come from a language model and can be slow)
//   - Log file: ~/.local/share/kbchat/kbchat.log
//   - Log level: info
//
// # TOML Format
//
//	api_url = "http://127.0.0.1:8000"
//	poll_interval = "2s"
//	request_timeout = "10s"
//	chat_timeout = "2m"
//	log_file = "~/.local/share/kbchat/kbchat.log"
//	log_level = "info"
//
// Durations use Go syntax (time.ParseDuration) and must be positive. Tilde
// expansion is applied to log_file.
//
// # Error Handling
//
// Load returns errors for path expansion failures, read errors other than
// os.ErrNotExist, TOML syntax errors and invalid durations. A missing file is
// not an error so kbchat works out of the box against a local service.
//
// Command-line flags are applied by the caller on top of the loaded Config;
// this package has no global state.
package config
