package config

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/onosproject/onos-lib-go/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Recognized keys. The same names are read from the environment.
const (
	MaxPackets      = "MAX_PACKETS"
	PacketSize      = "PACKET_SIZE"
	ChannelWidth    = "CHANNEL_WIDTH"
	Interval        = "INTERVAL"
	TotalDuration   = "TOTAL_DURATION"
	NumUsers        = "NUM_USERS"
	NumRis          = "NUM_RIS"
	NumElements     = "NUM_ELEMENTS"
	TxPowerDbm      = "TX_POWER_DBM"
	BandwidthPerRis = "BANDWIDTH_PER_RIS"
	Seed            = "SEED"
	ChannelModel    = "CHANNEL_MODEL"
)

// Keys lists every recognized key in documentation order
var Keys = []string{
	MaxPackets, PacketSize, ChannelWidth, Interval, TotalDuration,
	NumUsers, NumRis, NumElements, TxPowerDbm, BandwidthPerRis, Seed, ChannelModel,
}

var usage = map[string]string{
	MaxPackets:      "Maximum number of packets sent by each user",
	PacketSize:      "Packet size in bytes",
	ChannelWidth:    "Channel width in MHz (20, 40, 80 or 160)",
	Interval:        "Packet interval in seconds",
	TotalDuration:   "Total TDMA period in seconds",
	NumUsers:        "Number of users",
	NumRis:          "Number of reconfigurable surfaces",
	NumElements:     "Elements per surface",
	TxPowerDbm:      "User transmit power in dBm",
	BandwidthPerRis: "Channel bandwidth per surface in Hz",
	Seed:            "Seed for channel draws and surface placement",
	ChannelModel:    "Channel model (uniform, rician)",
}

var validChannelWidths = []int{20, 40, 80, 160}

var validChannelModels = []string{"uniform", "rician"}

// Config holds the typed run parameters
type Config struct {
	MaxPackets      int     `json:"maxPackets" yaml:"maxPackets"`
	PacketSize      int     `json:"packetSize" yaml:"packetSize"`
	ChannelWidth    int     `json:"channelWidth" yaml:"channelWidth"`
	Interval        float64 `json:"interval" yaml:"interval"`
	TotalDuration   float64 `json:"totalDuration" yaml:"totalDuration"`
	NumUsers        int     `json:"numUsers" yaml:"numUsers"`
	NumRis          int     `json:"numRis" yaml:"numRis"`
	NumElements     int     `json:"numElements" yaml:"numElements"`
	TxPowerDbm      float64 `json:"txPowerDbm" yaml:"txPowerDbm"`
	BandwidthPerRis float64 `json:"bandwidthPerRis" yaml:"bandwidthPerRis"`
	Seed            int64   `json:"seed" yaml:"seed"`
	ChannelModel    string  `json:"channelModel" yaml:"channelModel"`
}

// Default returns the documented defaults
func Default() Config {
	return Config{
		MaxPackets:      1000,
		PacketSize:      1024,
		ChannelWidth:    20,
		Interval:        0.01,
		TotalDuration:   10.0,
		NumUsers:        5,
		NumRis:          3,
		NumElements:     32,
		TxPowerDbm:      20.0,
		BandwidthPerRis: 5e6,
		Seed:            1,
		ChannelModel:    "uniform",
	}
}

func (c Config) values() map[string]interface{} {
	return map[string]interface{}{
		MaxPackets:      c.MaxPackets,
		PacketSize:      c.PacketSize,
		ChannelWidth:    c.ChannelWidth,
		Interval:        c.Interval,
		TotalDuration:   c.TotalDuration,
		NumUsers:        c.NumUsers,
		NumRis:          c.NumRis,
		NumElements:     c.NumElements,
		TxPowerDbm:      c.TxPowerDbm,
		BandwidthPerRis: c.BandwidthPerRis,
		Seed:            c.Seed,
		ChannelModel:    c.ChannelModel,
	}
}

// FlagName returns the command line flag bound to key, e.g. tx-power-dbm
func FlagName(key string) string {
	return strings.ToLower(strings.ReplaceAll(key, "_", "-"))
}

// RegisterFlags defines one flag per key with the default as flag default
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.Int(FlagName(MaxPackets), d.MaxPackets, usage[MaxPackets])
	fs.Int(FlagName(PacketSize), d.PacketSize, usage[PacketSize])
	fs.Int(FlagName(ChannelWidth), d.ChannelWidth, usage[ChannelWidth])
	fs.Float64(FlagName(Interval), d.Interval, usage[Interval])
	fs.Float64(FlagName(TotalDuration), d.TotalDuration, usage[TotalDuration])
	fs.Int(FlagName(NumUsers), d.NumUsers, usage[NumUsers])
	fs.Int(FlagName(NumRis), d.NumRis, usage[NumRis])
	fs.Int(FlagName(NumElements), d.NumElements, usage[NumElements])
	fs.Float64(FlagName(TxPowerDbm), d.TxPowerDbm, usage[TxPowerDbm])
	fs.Float64(FlagName(BandwidthPerRis), d.BandwidthPerRis, usage[BandwidthPerRis])
	fs.Int64(FlagName(Seed), d.Seed, usage[Seed])
	fs.String(FlagName(ChannelModel), d.ChannelModel, usage[ChannelModel])
}

// ParseFile reads KEY=VALUE lines. The value is everything after the first
// '=' and is kept verbatim. Blank lines are skipped; malformed lines and
// unknown keys are logged and ignored.
func ParseFile(path string) (map[string]interface{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f, path)
}

// Parse is ParseFile over a reader; name is only used in log messages
func Parse(r io.Reader, name string) (map[string]interface{}, error) {
	known := make(map[string]bool, len(Keys))
	for _, k := range Keys {
		known[k] = true
	}

	values := make(map[string]interface{})
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		idx := strings.Index(line, "=")
		if idx < 0 {
			log.Warnf("%s:%d: missing '=' in %q, skipping", name, lineNo, line)
			continue
		}
		key := strings.TrimSpace(line[:idx])
		value := line[idx+1:]
		if !known[key] {
			log.Warnf("%s:%d: unknown key %q, ignoring", name, lineNo, key)
			continue
		}
		values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %v", name, err)
	}
	return values, nil
}

// Load layers defaults, the override file at path, the environment and the
// changed flags of fs, in increasing precedence. A missing file is not an
// error. Malformed values yield an Invalid error.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	for k, val := range Default().values() {
		v.SetDefault(k, val)
	}

	if path != "" {
		values, err := ParseFile(path)
		switch {
		case os.IsNotExist(err):
			log.Warnf("Config file %s not found, using defaults", path)
		case err != nil:
			return nil, fmt.Errorf("failed to load config %s: %v", path, err)
		default:
			log.Infof("Loaded %d overrides from %s", len(values), path)
			if err := v.MergeConfigMap(values); err != nil {
				return nil, fmt.Errorf("failed to merge config %s: %v", path, err)
			}
		}
	}

	v.AutomaticEnv()

	if fs != nil {
		for _, k := range Keys {
			if f := fs.Lookup(FlagName(k)); f != nil {
				if err := v.BindPFlag(k, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %v", f.Name, err)
				}
			}
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Debugf("Config: %+v", *cfg)
	return cfg, nil
}

func decode(v *viper.Viper) (*Config, error) {
	d := &decoder{v: v}
	cfg := &Config{
		MaxPackets:      d.int(MaxPackets),
		PacketSize:      d.int(PacketSize),
		ChannelWidth:    d.int(ChannelWidth),
		Interval:        d.float(Interval),
		TotalDuration:   d.float(TotalDuration),
		NumUsers:        d.int(NumUsers),
		NumRis:          d.int(NumRis),
		NumElements:     d.int(NumElements),
		TxPowerDbm:      d.float(TxPowerDbm),
		BandwidthPerRis: d.float(BandwidthPerRis),
		Seed:            d.int64(Seed),
		ChannelModel:    cast.ToString(v.Get(ChannelModel)),
	}
	if d.err != nil {
		return nil, d.err
	}
	return cfg, nil
}

// decoder keeps the first conversion error
type decoder struct {
	v   *viper.Viper
	err error
}

func (d *decoder) fail(key string, err error) {
	if d.err == nil {
		d.err = errors.NewInvalid("malformed value %q for %s: %v", cast.ToString(d.v.Get(key)), key, err)
	}
}

func (d *decoder) int(key string) int {
	return int(d.int64(key))
}

// int64 reads file and env strings as base 10 only; cast would take 032 as octal
func (d *decoder) int64(key string) int64 {
	raw := d.v.Get(key)
	if s, ok := raw.(string); ok {
		i, err := strconv.ParseInt(s, 10, strconv.IntSize)
		if err != nil {
			d.fail(key, err)
		}
		return i
	}
	i, err := cast.ToInt64E(raw)
	if err != nil {
		d.fail(key, err)
	}
	return i
}

func (d *decoder) float(key string) float64 {
	f, err := cast.ToFloat64E(d.v.Get(key))
	if err != nil {
		d.fail(key, err)
	}
	return f
}

// Validate checks ranges once at load time
func (c Config) Validate() error {
	switch {
	case c.NumUsers < 0:
		return errors.NewInvalid("%s must be >= 0, got %d", NumUsers, c.NumUsers)
	case c.NumRis < 0:
		return errors.NewInvalid("%s must be >= 0, got %d", NumRis, c.NumRis)
	case c.NumElements < 0:
		return errors.NewInvalid("%s must be >= 0, got %d", NumElements, c.NumElements)
	case c.MaxPackets < 0:
		return errors.NewInvalid("%s must be >= 0, got %d", MaxPackets, c.MaxPackets)
	case c.PacketSize < 0:
		return errors.NewInvalid("%s must be >= 0, got %d", PacketSize, c.PacketSize)
	case !isFinite(c.TxPowerDbm):
		return errors.NewInvalid("%s must be finite, got %v", TxPowerDbm, c.TxPowerDbm)
	case !isFinite(c.TotalDuration), !isFinite(c.Interval), !isFinite(c.BandwidthPerRis):
		return errors.NewInvalid("%s, %s and %s must be finite, got %v, %v, %v",
			TotalDuration, Interval, BandwidthPerRis, c.TotalDuration, c.Interval, c.BandwidthPerRis)
	case !(c.TotalDuration > 0):
		return errors.NewInvalid("%s must be > 0, got %v", TotalDuration, c.TotalDuration)
	case !(c.Interval > 0):
		return errors.NewInvalid("%s must be > 0, got %v", Interval, c.Interval)
	case !(c.BandwidthPerRis > 0):
		return errors.NewInvalid("%s must be > 0, got %v", BandwidthPerRis, c.BandwidthPerRis)
	}
	if !containsInt(validChannelWidths, c.ChannelWidth) {
		return errors.NewInvalid("%s must be one of %v, got %d", ChannelWidth, validChannelWidths, c.ChannelWidth)
	}
	if !containsString(validChannelModels, c.ChannelModel) {
		return errors.NewInvalid("%s must be one of %v, got %q", ChannelModel, validChannelModels, c.ChannelModel)
	}
	return nil
}

// WriteDefaults prints the defaults in override file format
func WriteDefaults(w io.Writer) error {
	values := Default().values()
	for _, k := range Keys {
		if _, err := fmt.Fprintf(w, "%s=%s\n", k, cast.ToString(values[k])); err != nil {
			return err
		}
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

func containsInt(list []int, v int) bool {
	for _, i := range list {
		if i == v {
			return true
		}
	}
	return false
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
