package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"gopkg.in/yaml.v3"

	"k8s.io/klog/v2"

	"github.com/benchfarm/devmatch/internal/export"
	"github.com/benchfarm/devmatch/internal/resource"
	"github.com/benchfarm/devmatch/internal/udev"
)

func main() {
	flags := initFlags()
	config := flags.config

	// The source looks up devices and listens for kernel events
	source, err := udev.NewSource()
	if err != nil {
		klog.Fatalf("failed to connect to udev: %v", err)
		os.Exit(1)
	}
	defer source.Close()

	manager := resource.NewManager(source)
	defer manager.Close()

	resources := make([]export.Availability, 0, len(config.Resources))
	for _, resConfig := range config.Resources {
		res, err := resource.New(resConfig)
		if err != nil {
			klog.Fatalf("failed to configure resource: %v", err)
			os.Exit(1)
		}
		if err := manager.Add(res); err != nil {
			klog.Warningf("%s: continuing without an initial scan", res.Name())
		}
		resources = append(resources, res)
	}

	var exporter *export.Server
	if config.Export.SocketDir != "" {
		exporter, err = export.NewServer(config.Name, config.Export.SocketDir)
		if err != nil {
			klog.Fatalf("failed to publish availability: %v", err)
			os.Exit(1)
		}
		defer exporter.Close()
		exporter.Sync(resources)
	}

	configChanges := watchConfig(flags.Config)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(config.pollInterval)
	defer ticker.Stop()

	klog.Infof("%s: watching %d resources", config.Name, len(resources))
	for {
		select {
		case <-ticker.C:
			manager.Poll()
			if exporter != nil {
				exporter.Sync(resources)
			}
		case event := <-configChanges:
			klog.Warningf("Configuration %q changed on disk, restart to apply it", event.Name)
		case sig := <-sigs:
			klog.Infof("Received signal %q, shutting down", sig.String())
			return
		}
	}
}

// watchConfig reports changes to a file backed configuration source.
// The agent does not reload, operators get a reminder that a restart
// is due instead. Other sources cannot change and return a nil
// channel, which never delivers.
func watchConfig(source ConfigFlag) <-chan fsnotify.Event {
	fcs, ok := source.configSource.(*fileConfigSource)
	if !ok {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		klog.Errorf("Failed to watch the configuration: %v", err)
		return nil
	}
	// Watch the directory. Editors and config management tend to
	// replace the file, which ends a watch on the file itself.
	if err := watcher.Add(filepath.Dir(fcs.path)); err != nil {
		klog.Errorf("Failed to watch the configuration: %v", err)
		watcher.Close()
		return nil
	}

	events := make(chan fsnotify.Event, 1)
	go func() {
		for event := range watcher.Events {
			if event.Name != fcs.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			select {
			case events <- event:
			default:
			}
		}
	}()

	return events
}

type configSource interface {
	String() string
	open() (io.Reader, func() error, error)
}

type fileConfigSource struct {
	path string
}

func (fcs *fileConfigSource) open() (io.Reader, func() error, error) {
	file, err := os.Open(fcs.path)
	if err != nil {
		return nil, nil, err
	}
	return file, file.Close, nil
}

func (fcs *fileConfigSource) String() string {
	return "file:" + fcs.path
}

type envConfigSource struct {
	variable string
}

func (ecs *envConfigSource) open() (io.Reader, func() error, error) {
	data := os.Getenv(ecs.variable)
	if data == "" {
		return nil, nil, fmt.Errorf("config: environment variable %s is not set", ecs.variable)
	}
	return strings.NewReader(data), func() error { return nil }, nil
}

func (ecs *envConfigSource) String() string {
	return "env:" + ecs.variable
}

type stdinConfigSource struct{}

func (scs *stdinConfigSource) open() (io.Reader, func() error, error) {
	return os.Stdin, func() error { return nil }, nil
}

func (scs *stdinConfigSource) String() string {
	return "stdin"
}

type ConfigFlag struct {
	configSource
}

func (cf *ConfigFlag) Set(value string) error {
	if strings.HasPrefix(value, "file:") {
		cf.configSource = &fileConfigSource{path: strings.TrimPrefix(value, "file:")}
	} else if strings.HasPrefix(value, "env:") {
		cf.configSource = &envConfigSource{variable: strings.TrimPrefix(value, "env:")}
	} else if strings.HasPrefix(value, "stdin") {
		cf.configSource = &stdinConfigSource{}
	} else {
		return fmt.Errorf("invalid config source: %s", value)
	}

	return nil
}

func (cf *ConfigFlag) String() string {
	if cf.configSource == nil {
		return ""
	}
	return cf.configSource.String()
}

type FlagValues struct {
	Config ConfigFlag

	config *Config
}

func initFlags() FlagValues {
	values := FlagValues{}
	flags := flag.NewFlagSet("devmatch", flag.ExitOnError)
	klog.InitFlags(flags)
	flags.Var(&values.Config, "config", `configuration source (in form "file:<path>", "env:<ENV_VARIABLE>" or "stdin")`)
	flags.Parse(os.Args[1:])
	if values.Config.configSource == nil {
		flags.Output().Write([]byte("config flag is required\n"))
		flags.Usage()
		os.Exit(2)
	}
	configReader, configCloser, err := values.Config.open()
	if err != nil {
		klog.Fatalf("failed to open --config %q: %v", values.Config.String(), err)
		os.Exit(1)
	}
	defer configCloser()

	config, err := parseConfig(configReader)
	if err != nil {
		klog.Fatalf("failed to parse --config %q: %v", values.Config.String(), err)
		os.Exit(1)
	}

	values.config = config

	return values
}

const defaultPollInterval = 250 * time.Millisecond

type ExportConfig struct {
	SocketDir string `yaml:"socketDir,omitempty"` // availability is not published when empty
}

type Config struct {
	Name         string            `yaml:"name"`
	PollInterval string            `yaml:"pollInterval,omitempty"` // a time.ParseDuration value
	Export       ExportConfig      `yaml:"export,omitempty"`
	Resources    []resource.Config `yaml:"resources"`

	pollInterval time.Duration // parsed interval if the config is valid
}

func (c *Config) validate() error {
	var errs error
	// Validate the agent name
	if c.Name == "" {
		errs = errors.Join(errs, fmt.Errorf(".name: must be set"))
	}

	// Validate the poll interval
	c.pollInterval = defaultPollInterval
	if c.PollInterval != "" {
		interval, err := time.ParseDuration(c.PollInterval)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf(".pollInterval: %q must be a valid duration: %w", c.PollInterval, err))
		} else if interval <= 0 {
			errs = errors.Join(errs, fmt.Errorf(".pollInterval: %q must be positive", c.PollInterval))
		} else {
			c.pollInterval = interval
		}
	}

	// Validate the resources
	if len(c.Resources) == 0 {
		errs = errors.Join(errs, fmt.Errorf(".resources: at least one resource must be configured"))
	}
	names := make(map[string]bool, len(c.Resources))
	for i := range c.Resources {
		name := c.Resources[i].Name
		if name == "" {
			errs = errors.Join(errs, fmt.Errorf(".resources[%d].name: must be set", i))
			continue
		}
		if names[name] {
			errs = errors.Join(errs, fmt.Errorf(".resources[%d].name: %q is used more than once", i, name))
		}
		names[name] = true
	}

	return errs
}

func parseConfig(reader io.Reader) (*Config, error) {
	// Parse the config file
	decoder := yaml.NewDecoder(reader)
	config := &Config{}
	if err := decoder.Decode(config); err != nil {
		return nil, err
	}

	// Validate the config
	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}
