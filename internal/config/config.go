// Package config resolves dumpling's directories and reads its TOML settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/viper"

	"github.com/csheth/dumpling/internal/desktop"
)

// Name is used for the cache, config and log file names.
const Name = "dumpling"

// Environment overrides for the resolved locations.
const (
	EnvCacheDir = "DUMPLING_CACHE_DIR"
	EnvConfig   = "DUMPLING_CONFIG"
)

// RGB is a colour triple as written in the config file.
type RGB []int

// Color converts the triple into a lipgloss colour. Malformed triples fall
// back to the terminal default.
func (c RGB) Color() lipgloss.TerminalColor {
	if len(c) != 3 {
		return lipgloss.NoColor{}
	}
	for _, v := range c {
		if v < 0 || v > 255 {
			return lipgloss.NoColor{}
		}
	}
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}

// General holds the [general] section.
type General struct {
	LoadSize      int    `mapstructure:"load_size"`
	PDFViewer     string `mapstructure:"pdf_viewer"`
	PDFDir        string `mapstructure:"pdf_dir"`
	EditorCommand string `mapstructure:"editor_command"`
	SelectionIcon string `mapstructure:"selection_icon"`
	FileIcon      string `mapstructure:"file_icon"`
	LogLevel      string `mapstructure:"log_level"`
}

// Colors holds the [colors] section.
type Colors struct {
	MasterBlockTitle     RGB `mapstructure:"master_block_title"`
	MasterBlockBorder    RGB `mapstructure:"master_block_border"`
	ExplorerUnselectedFg RGB `mapstructure:"explorer_unselected_fg"`
	ExplorerUnselectedBg RGB `mapstructure:"explorer_unselected_bg"`
	ExplorerSelectedFg   RGB `mapstructure:"explorer_selected_fg"`
	ExplorerSelectedBg   RGB `mapstructure:"explorer_selected_bg"`
	ContentBlockTitle    RGB `mapstructure:"content_block_title"`
	ContentBlockBorder   RGB `mapstructure:"content_block_border"`
	TitleContent         RGB `mapstructure:"title_content"`
	AuthorContent        RGB `mapstructure:"author_content"`
	DescriptionContent   RGB `mapstructure:"description_content"`
	TagContent           RGB `mapstructure:"tag_content"`
}

// Keybinds holds the [keybinds] section. Each value is a bubbletea key name
// such as "q" or "ctrl+d".
type Keybinds struct {
	Quit              string `mapstructure:"quit"`
	Next              string `mapstructure:"next"`
	Previous          string `mapstructure:"previous"`
	BibtexToClipboard string `mapstructure:"bibtex_to_clipboard"`
	Edit              string `mapstructure:"edit"`
	Delete            string `mapstructure:"delete"`
	OpenInPDFViewer   string `mapstructure:"open_in_pdfviewer"`
}

// Config is the fully resolved configuration.
type Config struct {
	General  General  `mapstructure:"general"`
	Colors   Colors   `mapstructure:"colors"`
	Keybinds Keybinds `mapstructure:"keybinds"`
}

var (
	white = []int{255, 255, 255}
	blue  = []int{0, 0, 255}
)

func setDefaults(v *viper.Viper) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}
	v.SetDefault("general.load_size", 0)
	v.SetDefault("general.pdf_viewer", "zathura")
	v.SetDefault("general.pdf_dir", "~/.paper")
	v.SetDefault("general.editor_command", editor)
	v.SetDefault("general.selection_icon", "> ")
	v.SetDefault("general.file_icon", "")
	v.SetDefault("general.log_level", "info")

	v.SetDefault("colors.master_block_title", white)
	v.SetDefault("colors.master_block_border", white)
	v.SetDefault("colors.explorer_unselected_fg", blue)
	v.SetDefault("colors.explorer_unselected_bg", []int{0, 0, 0})
	v.SetDefault("colors.explorer_selected_fg", blue)
	v.SetDefault("colors.explorer_selected_bg", []int{48, 48, 48})
	v.SetDefault("colors.content_block_title", white)
	v.SetDefault("colors.content_block_border", white)
	v.SetDefault("colors.title_content", white)
	v.SetDefault("colors.author_content", white)
	v.SetDefault("colors.description_content", white)
	v.SetDefault("colors.tag_content", white)

	v.SetDefault("keybinds.quit", "q")
	v.SetDefault("keybinds.next", "j")
	v.SetDefault("keybinds.previous", "k")
	v.SetDefault("keybinds.bibtex_to_clipboard", "b")
	v.SetDefault("keybinds.edit", "e")
	v.SetDefault("keybinds.delete", "d")
	v.SetDefault("keybinds.open_in_pdfviewer", "o")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix("DUMPLING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// Default returns the built-in configuration.
func Default() Config {
	cfg, _ := decode(newViper())
	return cfg
}

// Load reads the TOML file at path on top of the defaults. A missing file is
// not an error. When the file cannot be parsed the defaults are returned
// together with the error so callers can log it and carry on.
func Load(path string) (Config, error) {
	v := newViper()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return Default(), fmt.Errorf("config: read %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return Default(), fmt.Errorf("config: stat %s: %w", path, err)
		}
	}
	cfg, err := decode(v)
	if err != nil {
		return Default(), fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, nil
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ResolvedPDFDir returns general.pdf_dir with "~" and "$HOME" expanded.
func (c Config) ResolvedPDFDir() (string, error) {
	return desktop.ExpandPath(c.General.PDFDir)
}

// Paths are the on-disk locations dumpling uses.
type Paths struct {
	// EntryDir holds one TOML file per paper.
	EntryDir string
	// LogFile is rewritten on every run.
	LogFile string
	// ConfigFile may not exist.
	ConfigFile string
}

// ResolvePaths locates the entry directory, log file and config file,
// honouring DUMPLING_CACHE_DIR and DUMPLING_CONFIG.
func ResolvePaths() (Paths, error) {
	entryDir := strings.TrimSpace(os.Getenv(EnvCacheDir))
	if entryDir == "" {
		cache, err := os.UserCacheDir()
		if err != nil {
			return Paths{}, fmt.Errorf("config: locate cache dir: %w", err)
		}
		entryDir = filepath.Join(cache, Name)
	}
	configFile := strings.TrimSpace(os.Getenv(EnvConfig))
	if configFile == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return Paths{}, fmt.Errorf("config: locate config dir: %w", err)
		}
		configFile = filepath.Join(dir, Name, Name+".toml")
	}
	return Paths{
		EntryDir:   entryDir,
		LogFile:    filepath.Join(entryDir, Name+".log"),
		ConfigFile: configFile,
	}, nil
}
