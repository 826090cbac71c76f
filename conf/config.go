package conf

// Respio is the configuration center
type Respio struct {
	Server      Server `cfg:"server"`
	Status      Status `cfg:"status"`
	Logger      Logger `cfg:"logger"`
	PIDFileName string `cfg:"pid-filename; respio.pid; ; the file name to record the server PID"`
}

// Server config is the config of the RESP server
type Server struct {
	Listen        string `cfg:"listen; 0.0.0.0:7369; netaddr; address to listen"`
	MaxConnection int64  `cfg:"max-connection;1000;numeric;client connection count"`
	SSLCertFile   string `cfg:"ssl-cert-file;;;path of the TLS certificate, TLS is enabled when both files are set"`
	SSLKeyFile    string `cfg:"ssl-key-file;;;path of the TLS key"`
}

// Status config is the config of the exported status server
type Status struct {
	Listen string `cfg:"listen;0.0.0.0:7345;nonempty; listen address of http server"`
}

// Logger config is the config of default zap log
type Logger struct {
	Name       string `cfg:"name; respio; ; the default logger name"`
	Path       string `cfg:"path; logs/respio; ; the default log path"`
	Level      string `cfg:"level; info; ; log level(debug, info, warn, error, panic, fatal)"`
	Compress   bool   `cfg:"compress; false; boolean; true for enabling log compress"`
	TimeRotate string `cfg:"time-rotate; 0 0 0 * * *; ; log time rotate pattern(s m h D M W)"`
}
