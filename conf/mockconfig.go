package conf

// MockConf init and return a respio mock conf
func MockConf() *Respio {
	return &Respio{
		Server: Server{
			Listen:        "127.0.0.1:0",
			MaxConnection: 1000,
		},
		Status: Status{
			Listen: "127.0.0.1:0",
		},
		Logger: Logger{
			Name:  "respio",
			Level: "info",
		},
	}
}
