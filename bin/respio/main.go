package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	_ "net/http/pprof"
	"os"
	ospath "path"
	"time"

	rolling "github.com/arthurkiller/rollingWriter"
	"github.com/shafreeck/configo"
	"github.com/shafreeck/continuous"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/distributedio/respio"
	"github.com/distributedio/respio/conf"
	"github.com/distributedio/respio/context"
	"github.com/distributedio/respio/metrics"
)

func main() {
	var showVersion bool
	var confPath string

	flag.BoolVar(&showVersion, "v", false, "Show Version")
	flag.StringVar(&confPath, "c", "conf/respio.toml", "conf file path")
	flag.Parse()

	if showVersion {
		respio.PrintVersionInfo()
		return
	}

	config := &conf.Respio{}
	if err := configo.Load(confPath, config); err != nil {
		fmt.Printf("unmarshal config file failed, %s\n", err)
		os.Exit(1)
	}

	if err := ConfigureZap(config.Logger.Name, config.Logger.Path, config.Logger.Level,
		config.Logger.TimeRotate, config.Logger.Compress); err != nil {
		fmt.Printf("create logger failed, %s\n", err)
		os.Exit(1)
	}

	var opts []respio.Option
	if config.Server.SSLCertFile != "" && config.Server.SSLKeyFile != "" {
		tlsConf, err := respio.TLSConfig(config.Server.SSLCertFile, config.Server.SSLKeyFile)
		if err != nil {
			zap.L().Fatal("load tls config failed", zap.Error(err))
		}
		opts = append(opts, respio.WithTLS(tlsConf))
	}

	serv := respio.New(&context.ServerContext{
		MaxConnection: config.Server.MaxConnection,
	}, respio.DefaultRegistry(), opts...)

	svr := metrics.NewServer(&config.Status)

	writer, err := Writer(config.Logger.Path, config.Logger.TimeRotate, config.Logger.Compress)
	if err != nil {
		zap.L().Fatal("create writer for continuous failed", zap.Error(err))
	}
	cont := continuous.New(continuous.LoggerOutput(writer), continuous.PidFile(config.PIDFileName))
	if err := cont.AddServer(serv, &continuous.ListenOn{Network: "tcp", Address: config.Server.Listen}); err != nil {
		zap.L().Fatal("add respio server failed", zap.Error(err))
	}

	if err := cont.AddServer(svr, &continuous.ListenOn{Network: "tcp", Address: config.Status.Listen}); err != nil {
		zap.L().Fatal("add status server failed", zap.Error(err))
	}

	if err := cont.Serve(); err != nil {
		zap.L().Fatal("run server failed", zap.Error(err))
	}
}

// ConfigureZap customize the zap logger
func ConfigureZap(name, path, level, pattern string, compress bool) error {
	writer, err := Writer(path, pattern, compress)
	if err != nil {
		return err
	}

	var lv = zap.NewAtomicLevel()
	switch level {
	case "debug":
		lv.SetLevel(zap.DebugLevel)
	case "info":
		lv.SetLevel(zap.InfoLevel)
	case "warn":
		lv.SetLevel(zap.WarnLevel)
	case "error":
		lv.SetLevel(zap.ErrorLevel)
	case "panic":
		lv.SetLevel(zap.PanicLevel)
	case "fatal":
		lv.SetLevel(zap.FatalLevel)
	default:
		return fmt.Errorf("unknown log level(%s)", level)
	}
	timeEncoder := func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Local().Format("2006-01-02 15:04:05.999999999"))
	}

	encoderCfg := zapcore.EncoderConfig{
		NameKey:        "Name",
		StacktraceKey:  "Stack",
		MessageKey:     "Message",
		LevelKey:       "Level",
		TimeKey:        "TimeStamp",
		CallerKey:      "Caller",
		EncodeTime:     timeEncoder,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	output := zapcore.AddSync(writer)
	var zapOpts []zap.Option
	zapOpts = append(zapOpts, zap.AddCaller())
	zapOpts = append(zapOpts, zap.Hooks(metrics.Measure))

	logger := zap.New(zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), output, lv), zapOpts...)
	logger.Named(name)
	log := logger.With(zap.Int("PID", os.Getpid()))
	zap.ReplaceGlobals(log)
	// change the log level over http
	http.Handle("/respio/log/level", lv)

	return nil
}

// Writer generate the rollingWriter
func Writer(path, pattern string, compress bool) (io.Writer, error) {
	var opts []rolling.Option
	opts = append(opts, rolling.WithRollingTimePattern(pattern))
	if compress {
		opts = append(opts, rolling.WithCompress())
	}
	dir, filename := ospath.Split(path)
	opts = append(opts, rolling.WithLogPath(dir), rolling.WithFileName(filename), rolling.WithLock())
	writer, err := rolling.NewWriter(opts...)
	if err != nil {
		return nil, fmt.Errorf("create IOWriter failed, %s", err)
	}
	return writer, nil
}
