package main

import (
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/goodtune/kdict/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var validateDump bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long:  `Validate the kdict configuration file for syntax and semantic errors.`,
	Args:  cobra.NoArgs,
	// the root hook would fail first on an invalid file
	PersistentPreRun: func(cmd *cobra.Command, args []string) {},
	RunE:             runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateDump, "dump", false, "Dump full configuration with non-default values highlighted")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	loaded, err := config.Load(configPath)
	if err != nil {
		_, _ = errColor.Fprintf(cmd.ErrOrStderr(), "Configuration validation failed: %v\n", err)
		return err
	}

	unknownKeys, err := findUnknownKeys(configPath)
	if err != nil {
		_, _ = warnColor.Fprintf(cmd.ErrOrStderr(), "Warning: could not check for unknown keys: %v\n", err)
	}

	fmt.Fprintf(out, "Configuration is valid: %s\n", configPath)

	if len(unknownKeys) > 0 {
		red := color.New(color.FgRed, color.Bold)
		fmt.Fprintln(out)
		_, _ = red.Fprintf(out, "WARNING: found %d unknown configuration key(s):\n", len(unknownKeys))
		for _, key := range unknownKeys {
			_, _ = red.Fprintf(out, "   - %s\n", key)
		}
		fmt.Fprintln(out, "\nThese keys will be ignored and may indicate typos.")
	}

	if validateDump {
		fmt.Fprintln(out, "\n"+strings.Repeat("=", 80))
		fmt.Fprintln(out, "FULL CONFIGURATION (values different from defaults are highlighted)")
		fmt.Fprintln(out, strings.Repeat("=", 80))

		dumpConfig(out, loaded, config.Defaults())

		fmt.Fprintln(out, "\n"+strings.Repeat("=", 80))
	}

	return nil
}

// findUnknownKeys reads the config file and returns keys that have no
// default, which means nothing reads them
func findUnknownKeys(configPath string) ([]string, error) {
	v := viper.New()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	return unknownKeysIn(v.AllKeys()), nil
}

func unknownKeysIn(keys []string) []string {
	defaults := viper.New()
	config.SetDefaults(defaults)

	valid := make(map[string]bool)
	for _, key := range defaults.AllKeys() {
		valid[key] = true
	}

	unknown := []string{}
	for _, key := range keys {
		if !valid[key] {
			unknown = append(unknown, key)
		}
	}

	sort.Strings(unknown)
	return unknown
}

// dumpConfig walks the configuration sections in declaration order and
// prints every leaf under its mapstructure key
func dumpConfig(w io.Writer, cfg, defaultCfg *config.Config) {
	yellow := color.New(color.FgYellow, color.Bold)
	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan, color.Bold)

	dumpStruct(w, reflect.ValueOf(*cfg), reflect.ValueOf(*defaultCfg), "", "", yellow, green, cyan)
}

func dumpStruct(w io.Writer, value, defaultValue reflect.Value, prefix, indent string, modified, unchanged, section *color.Color) {
	t := value.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := field.Tag.Get("mapstructure")
		if name == "" {
			name = strings.ToLower(field.Name)
		}
		key := name
		if prefix != "" {
			key = prefix + "." + name
		}

		v := value.Field(i)
		dv := defaultValue.Field(i)

		if v.Kind() == reflect.Struct {
			_, _ = section.Fprintf(w, "\n%s[%s]\n", indent, key)
			dumpStruct(w, v, dv, key, indent+"  ", modified, unchanged, section)
			continue
		}

		shown, shownDefault := v.Interface(), dv.Interface()
		if isSecret(name) {
			shown, shownDefault = redact(v.String()), redact(dv.String())
		}

		dumpField(w, indent+"  "+name, shown, shownDefault, modified, unchanged)
	}
}

// dumpField prints a field with color if it differs from default
func dumpField(w io.Writer, name string, value, defaultValue interface{}, modifiedColor, defaultColor *color.Color) {
	valueStr := fmt.Sprintf("%v", value)

	if reflect.DeepEqual(value, defaultValue) {
		_, _ = defaultColor.Fprintf(w, "%s = %s\n", name, valueStr)
	} else {
		_, _ = modifiedColor.Fprintf(w, "%s = %s  (modified from default: %v)\n", name, valueStr, defaultValue)
	}
}

func isSecret(name string) bool {
	return name == "password" || name == "jwt_secret"
}

// redact hides a secret if not empty
func redact(secret string) string {
	if secret == "" {
		return ""
	}
	return "***REDACTED***"
}
