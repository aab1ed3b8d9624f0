package env

import "os"

// Names of the recognized environment variables.
const (
	VarBasicUser = "BASIC_USER"
	VarBasicPass = "BASIC_PASS"
	VarProxyHost = "PROXY_HOST"
	VarProxyPort = "PROXY_PORT"
	VarProxyUser = "PROXY_USER"
	VarProxyPass = "PROXY_PASS"
)

// Snapshot holds the recognized environment values at process start. An
// empty field means the variable was unset; a variable set to the empty
// string is treated the same way.
type Snapshot struct {
	BasicUser string
	BasicPass string
	ProxyHost string
	ProxyPort string
	ProxyUser string
	ProxyPass string
}

// Capture reads the recognized variables from the process environment.
func Capture() Snapshot {
	return Snapshot{
		BasicUser: os.Getenv(VarBasicUser),
		BasicPass: os.Getenv(VarBasicPass),
		ProxyHost: os.Getenv(VarProxyHost),
		ProxyPort: os.Getenv(VarProxyPort),
		ProxyUser: os.Getenv(VarProxyUser),
		ProxyPass: os.Getenv(VarProxyPass),
	}
}

// Map flattens the snapshot into delimited configuration keys. Unset
// variables contribute nothing, which keeps them below every other source
// when the layers are merged.
func (s Snapshot) Map() map[string]any {
	m := make(map[string]any)
	put := func(key, value string) {
		if value != "" {
			m[key] = value
		}
	}
	put("basic_auth.user", s.BasicUser)
	put("basic_auth.pass", s.BasicPass)
	put("proxy.host", s.ProxyHost)
	put("proxy.port", s.ProxyPort)
	put("proxy.user", s.ProxyUser)
	put("proxy.pass", s.ProxyPass)
	return m
}
