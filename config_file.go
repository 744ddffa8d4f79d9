package hdbscan

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables read by LoadConfig, e.g.
// HDBSCAN_MIN_CLUSTER_SIZE.
const EnvPrefix = "HDBSCAN"

// FileConfig is the serializable subset of Config.
type FileConfig struct {
	MinClusterSize              int     `mapstructure:"min_cluster_size"`
	Metric                      string  `mapstructure:"metric"`
	MinkowskiP                  float64 `mapstructure:"minkowski_p"`
	Index                       string  `mapstructure:"index"`
	LeafSize                    int     `mapstructure:"leaf_size"`
	Workers                     int     `mapstructure:"workers"`
	ClusterSelectionMethod      string  `mapstructure:"cluster_selection_method"`
	ClusterSelectionEpsilon     float64 `mapstructure:"cluster_selection_epsilon"`
	ClusterSelectionPersistence float64 `mapstructure:"cluster_selection_persistence"`
	AllowSingleCluster          bool    `mapstructure:"allow_single_cluster"`
	Alpha                       float64 `mapstructure:"alpha"`
	MaxLambda                   float64 `mapstructure:"max_lambda"`
	MatrixThreshold             int     `mapstructure:"matrix_threshold"`
	CacheSize                   int     `mapstructure:"cache_size"`
}

// setDefaults registers every key so that environment overrides apply even
// when the file omits it.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("min_cluster_size", d.MinClusterSize)
	v.SetDefault("metric", "euclidean")
	v.SetDefault("minkowski_p", 2.0)
	v.SetDefault("index", string(d.Index))
	v.SetDefault("leaf_size", d.LeafSize)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("cluster_selection_method", d.ClusterSelectionMethod)
	v.SetDefault("cluster_selection_epsilon", d.ClusterSelectionEpsilon)
	v.SetDefault("cluster_selection_persistence", d.ClusterSelectionPersistence)
	v.SetDefault("allow_single_cluster", d.AllowSingleCluster)
	v.SetDefault("alpha", d.Alpha)
	v.SetDefault("max_lambda", d.MaxLambda)
	v.SetDefault("matrix_threshold", d.MatrixThreshold)
	v.SetDefault("cache_size", d.CacheSize)
}

// LoadConfig reads a Config from path (any format viper understands, chosen
// by extension) with HDBSCAN_* environment overrides. An empty path reads
// defaults and environment only. Logger and Metrics are left unset.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "hdbscan: read config file %s", path)
		}
	}

	var fc FileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return Config{}, errors.Wrapf(ErrInvalidArgument, "unmarshal config: %v", err)
	}
	return fc.Config()
}

// Config converts fc into a validated Config.
func (fc FileConfig) Config() (Config, error) {
	metric, err := ParseMetric(fc.Metric, fc.MinkowskiP)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		MinClusterSize:              fc.MinClusterSize,
		Metric:                      metric,
		Index:                       IndexKind(strings.ToLower(fc.Index)),
		LeafSize:                    fc.LeafSize,
		Workers:                     fc.Workers,
		ClusterSelectionMethod:      strings.ToLower(fc.ClusterSelectionMethod),
		ClusterSelectionEpsilon:     fc.ClusterSelectionEpsilon,
		ClusterSelectionPersistence: fc.ClusterSelectionPersistence,
		AllowSingleCluster:          fc.AllowSingleCluster,
		Alpha:                       fc.Alpha,
		MaxLambda:                   fc.MaxLambda,
		MatrixThreshold:             fc.MatrixThreshold,
		CacheSize:                   fc.CacheSize,
	}
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
