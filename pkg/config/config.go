package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/learningorchestra/orchestra/pkg/client"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix   = "ORCHESTRA"
	RoutePrefix = "microservice_"
)

// Config mirrors the properties understood by the client. Keys follow the
// properties file naming, flags are the dashed equivalents.
type Config struct {
	Address        string            `flag:"address" desc:"learning orchestra base url" mapstructure:"address"`
	SearchContent  string            `flag:"search-content" desc:"suffix marking a result as pending" mapstructure:"search_content"`
	SearchMetadata string            `flag:"search-metadata" desc:"suffix appended to a handle to poll its status" mapstructure:"search_metadata"`
	WaitTime       int               `flag:"wait-time" desc:"poll interval in milliseconds" default:"1000" mapstructure:"wait_time"`
	PollTimeout    time.Duration     `flag:"poll-timeout" desc:"bound on a single wait, zero waits forever" default:"0s" mapstructure:"poll_timeout"`
	RequestTimeout time.Duration     `flag:"request-timeout" desc:"http request timeout" default:"30s" mapstructure:"request_timeout"`
	ConnTimeout    time.Duration     `flag:"conn-timeout" desc:"http connection timeout" default:"10s" mapstructure:"conn_timeout"`
	Token          string            `flag:"token" desc:"bearer token sent with every request" mapstructure:"token"`
	Routes         map[string]string `flag:"route" desc:"additional microservice routes, as name=path" mapstructure:"route"`
}

// New returns a viper instance reading the named config file, or
// config.{properties,yaml,json} from the working directory and
// $HOME/.orchestra, with ORCHESTRA_ prefixed environment overrides.
func New(file string) (*viper.Viper, error) {
	v, err := NewViper()
	if err != nil {
		return nil, err
	}

	if err := Read(v, file); err != nil {
		return nil, err
	}

	return v, nil
}

// NewViper returns a viper instance with environment overrides and
// defaults set up but no config file read yet.
func NewViper() (*viper.Viper, error) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// defaults make every key known to viper so environment overrides apply
	// without flags
	if err := setDefaults(v, &Config{}); err != nil {
		return nil, err
	}

	return v, nil
}

// Read reads file into v. Without a file, a missing default config file
// is not an error.
func Read(v *viper.Viper, file string) error {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.orchestra")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return client.NewError(client.KindConfiguration, "config", "", err)
		}
	}

	return nil
}

// Bind registers a flag per config field on flags and binds it to v.
func Bind(flags *pflag.FlagSet, v *viper.Viper) error {
	return bind(flags, v, &Config{})
}

// BindStruct registers a flag per tagged field of cfg on flags and binds it
// to v. Fields are tagged like Config.
func BindStruct(flags *pflag.FlagSet, v *viper.Viper, cfg any) error {
	return bind(flags, v, cfg)
}

// Load decodes the properties held by v into an immutable client config.
func Load(v *viper.Viper) (*client.Config, error) {
	var c Config

	hooks := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
	)

	if err := v.Unmarshal(&c, viper.DecodeHook(hooks)); err != nil {
		return nil, client.NewError(client.KindConfiguration, "config", "", err)
	}

	return c.Parse(v)
}

func (c *Config) Parse(v *viper.Viper) (*client.Config, error) {
	routes := map[string]string{}

	for _, key := range v.AllKeys() {
		if strings.HasPrefix(key, RoutePrefix) {
			routes[key] = v.GetString(key)
		}
	}

	env := EnvPrefix + "_" + strings.ToUpper(RoutePrefix)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(name, env) {
			routes[strings.ToLower(strings.TrimPrefix(name, EnvPrefix+"_"))] = value
		}
	}

	for key, route := range c.Routes { // nosemgrep: range-over-map
		routes[strings.ToLower(key)] = route
	}

	config := &client.Config{
		Address:        c.Address,
		Routes:         routes,
		PendingMarker:  c.SearchContent,
		StatusSuffix:   c.SearchMetadata,
		PollInterval:   time.Duration(c.WaitTime) * time.Millisecond,
		PollTimeout:    c.PollTimeout,
		RequestTimeout: c.RequestTimeout,
		ConnTimeout:    c.ConnTimeout,
		Token:          c.Token,
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Helper functions

func bind(flags *pflag.FlagSet, v *viper.Viper, cfg any) error {
	rv := reflect.ValueOf(cfg).Elem()
	t := rv.Type()

	for i := 0; i < rv.NumField(); i++ {
		field := t.Field(i)
		n := field.Tag.Get("flag")
		k := field.Tag.Get("mapstructure")
		desc := field.Tag.Get("desc")
		value := field.Tag.Get("default")

		switch field.Type.Kind() {
		case reflect.String:
			flags.String(n, value, desc)
		case reflect.Int:
			d, err := parseDefault(value, strconv.Atoi)
			if err != nil {
				return err
			}
			flags.Int(n, d, desc)
		case reflect.Int64:
			if field.Type != reflect.TypeOf(time.Duration(0)) {
				panic(fmt.Sprintf("unsupported type %s", field.Type))
			}
			d, err := parseDefault(value, time.ParseDuration)
			if err != nil {
				return err
			}
			flags.Duration(n, d, desc)
		case reflect.Map:
			if field.Type != reflect.TypeOf(map[string]string{}) {
				panic(fmt.Sprintf("unsupported map type: %s", field.Type))
			}
			flags.StringToString(n, nil, desc)
		case reflect.Slice:
			if field.Type != reflect.TypeOf([]string{}) {
				panic(fmt.Sprintf("unsupported slice type: %s", field.Type))
			}
			flags.StringSlice(n, nil, desc)
		default:
			panic(fmt.Sprintf("unsupported type %s", field.Type.Kind()))
		}

		if err := v.BindPFlag(k, flags.Lookup(n)); err != nil {
			return err
		}
	}

	return nil
}

func setDefaults(v *viper.Viper, cfg any) error {
	t := reflect.TypeOf(cfg).Elem()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		k := field.Tag.Get("mapstructure")
		value := field.Tag.Get("default")

		switch field.Type.Kind() {
		case reflect.Int:
			d, err := parseDefault(value, strconv.Atoi)
			if err != nil {
				return err
			}
			v.SetDefault(k, d)
		case reflect.Map:
			v.SetDefault(k, map[string]string{})
		case reflect.Slice:
			v.SetDefault(k, []string{})
		default:
			v.SetDefault(k, value)
		}
	}

	return nil
}

func parseDefault[T any](value string, parse func(string) (T, error)) (T, error) {
	if value == "" {
		var zero T
		return zero, nil
	}

	t, err := parse(value)
	if err != nil {
		return t, errors.Join(fmt.Errorf("invalid default %q", value), err)
	}

	return t, nil
}
