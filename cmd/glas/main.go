// Glas - голосовой ввод текста с потоковым распознаванием.
//
// Работает в системном трее: горячая клавиша (аккорд или двойное нажатие
// модификатора) включает микрофон, распознанный текст печатается в активное
// поле по мере поступления. С флагом -cli работает в консоли.
package main

import (
	"flag"
	"os"

	"github.com/rs/zerolog/log"

	"glas/internal/app"
	"glas/internal/config"
	"glas/internal/hotkey"
	"glas/internal/logging"
)

// Version устанавливается при сборке через -ldflags.
var Version = "dev"

func main() {
	cliMode := flag.Bool("cli", false, "интерактивный консольный режим вместо трея")
	configPath := flag.String("config", "", "путь к config.json (по умолчанию рядом с бинарником)")
	flag.Parse()

	env, err := config.LoadEnv()
	if err != nil {
		logging.Init("info", true)
		log.Fatal().Err(err).Msg("Ошибка чтения окружения")
	}
	logging.Init(env.LogLevel, env.LogPretty)

	log.Info().Str("version", Version).Bool("cli", *cliMode).Msg("Glas запускается...")

	if *configPath == "" {
		*configPath = env.ConfigPath
	}

	// Запускаем в главном потоке (требование для macOS и некоторых GUI)
	hotkey.RunOnMainThread(func() {
		os.Exit(run(*cliMode, *configPath, env))
	})
}

func run(cliMode bool, configPath string, env config.Env) int {
	var cfg *config.Config
	if configPath != "" {
		cfg = config.NewWithPath(configPath)
	} else {
		cfg = config.New()
	}

	application, err := app.New(cfg, env)
	if err != nil {
		log.Error().Err(err).Msg("Ошибка инициализации")
		return 1
	}

	if cliMode {
		if err := application.RunCLI(os.Stdin, os.Stdout); err != nil {
			log.Error().Err(err).Msg("Ошибка консольного режима")
			return 1
		}
		return 0
	}

	application.Run()
	return 0
}
