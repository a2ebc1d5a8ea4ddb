// Package main provides the entry point for the spelldrill CLI application.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/dgnsrekt/spelldrill/internal/audio"
	"github.com/dgnsrekt/spelldrill/internal/cache"
	"github.com/dgnsrekt/spelldrill/internal/speech"
	"github.com/dgnsrekt/spelldrill/internal/store"
	"github.com/dgnsrekt/spelldrill/internal/words"
	"github.com/dgnsrekt/spelldrill/ui"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile  string
	wordsArg    string
	providerArg string

	rootCmd = &cobra.Command{
		Use:           "spelldrill",
		Short:         "Practice spelling words read aloud in your terminal",
		Long:          "\nBuild a word list, have it spoken through a native, local neural or cloud voice, and type what you hear.",
		SilenceErrors: false,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          execute,
	}
)

func execute(*cobra.Command, []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("spelldrill needs an interactive terminal")
	}

	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}
	cfg.ShareBaseURL = viper.GetString("share.base_url")
	if cfg.RemoteAPIKey == "" {
		cfg.RemoteAPIKey = viper.GetString("remote.api_key")
	}

	st, err := store.NewDefault()
	if err != nil {
		return fmt.Errorf("unable to open data store: %w", err)
	}

	settings := store.LoadSettings(st)
	if providerArg != "" {
		kind := speech.Kind(providerArg)
		if !kind.Valid() {
			return fmt.Errorf("unknown provider %q (native, local or remote)", providerArg)
		}
		settings.Provider = kind
	}
	if settings.Provider == speech.KindRemote && cfg.RemoteAPIKey == "" {
		log.Warn("remote backend selected but no API key is set; using native")
		settings.Provider = speech.KindNative
	}

	list := words.Load(st, store.KeyWords)
	if wordsArg != "" {
		importShareLink(list, wordsArg)
	}

	player, err := audio.NewOtoPlayer(audio.DefaultConfig())
	if err != nil {
		return fmt.Errorf("unable to open audio device: %w", err)
	}
	defer player.Close() //nolint:errcheck

	models, err := cache.NewModelStore(filepath.Join(st.Dir(), "models"))
	if err != nil {
		return fmt.Errorf("unable to open model store: %w", err)
	}
	audioCache, err := cache.NewDiskCache(
		filepath.Join(st.Dir(), "audio-cache"),
		viper.GetInt64("cache.max_size")*1024*1024,
		viper.GetInt("cache.compression"),
	)
	if err != nil {
		return fmt.Errorf("unable to open audio cache: %w", err)
	}

	native := speech.NewNativeProvider(speech.NewEspeakHost())
	local := speech.NewLocalProvider(speech.LocalConfig{
		Models:     models,
		AudioCache: audioCache,
		Player:     player,
		BaseURL:    viper.GetString("local.model_base_url"),
	})
	remote := speech.NewRemoteProvider(speech.RemoteConfig{
		APIKey:            cfg.RemoteAPIKey,
		AudioCache:        audioCache,
		Player:            player,
		RequestsPerMinute: viper.GetInt("remote.requests_per_minute"),
	})

	// Download progress feeds the UI through a small buffered channel;
	// stale ticks are dropped rather than blocking the downloader.
	progressCh := make(chan float64, 1)
	local.SetProgressCallback(func(f float64) {
		select {
		case progressCh <- f:
		default:
		}
	})

	selector := speech.NewSelector(native, local, remote, func(kind speech.Kind) {
		s := store.LoadSettings(st)
		s.Provider = kind
		store.SaveSettings(st, s)
	})

	wordsCh, stopWatch, err := st.Watch(store.KeyWords)
	if err != nil {
		log.Debug("word-list watching unavailable", "error", err)
	} else {
		defer stopWatch()
	}

	if _, err := ui.NewProgram(cfg, ui.Deps{
		Store:        st,
		List:         list,
		Selector:     selector,
		Settings:     settings,
		Progress:     progressCh,
		WordsChanged: wordsCh,
	}).Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}
	return nil
}

// importShareLink replaces the stored word list with words decoded from a
// share link. A link that decodes to nothing leaves the stored list alone,
// so a mangled link never wipes out saved words.
func importShareLink(list *words.List, link string) {
	decoded := store.DecodeShareLink(link)
	if len(decoded) == 0 {
		log.Warn("no words found in share link; keeping stored list", "link", link)
		return
	}
	list.Replace(decoded)
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.Flags().StringVarP(&wordsArg, "words", "w", "", "load words from a share link or comma-separated list")
	rootCmd.Flags().StringVarP(&providerArg, "provider", "p", "", "speech backend for this session (native/local/remote)")

	_ = viper.BindPFlag("provider", rootCmd.Flags().Lookup("provider"))

	viper.SetDefault("share.base_url", "https://spelldrill.app/practice")
	viper.SetDefault("remote.api_key", "")
	viper.SetDefault("remote.requests_per_minute", 30)
	viper.SetDefault("local.model_base_url", "")
	viper.SetDefault("cache.max_size", 100)
	viper.SetDefault("cache.compression", 3)

	rootCmd.AddCommand(configCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "spelldrill")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "spelldrill")}, dirs...)
	}

	if c := os.Getenv("SPELLDRILL_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("spelldrill")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("spelldrill")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "spelldrill.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
