package config

import (
	"github.com/gotify/configor"
)

var Conf *Configuration

type Configuration struct {
	App struct {
		ListenAddr string `default:"" env:"APP_HOST"`
		Port       int    `default:"8080"  env:"APP_PORT"`
	}
	Platform struct {
		URL               string `default:"http://localhost:8000" env:"PLATFORM_API_URL"`
		RequestTimeoutSec int    `default:"30" env:"PLATFORM_REQUEST_TIMEOUT_SEC"`
		TTSLang           string `default:"tr" env:"PLATFORM_TTS_LANG"`
		TTSProvider       string `default:"" env:"PLATFORM_TTS_PROVIDER"`
	}
	Interview struct {
		SilenceWindowSec    int `default:"4" env:"INTERVIEW_SILENCE_WINDOW_SEC"`
		MinHoldSec          int `default:"6" env:"INTERVIEW_MIN_HOLD_SEC"`
		HardTimeoutSec      int `default:"90" env:"INTERVIEW_HARD_TIMEOUT_SEC"`
		MinAnswerChars      int `default:"12" env:"INTERVIEW_MIN_ANSWER_CHARS"`
		ChunkIntervalMs     int `default:"1000" env:"INTERVIEW_CHUNK_INTERVAL_MS"`
		SpeakMaxWaitSec     int `default:"60" env:"INTERVIEW_SPEAK_MAX_WAIT_SEC"`
		StopFlushTimeoutSec int `default:"10" env:"INTERVIEW_STOP_FLUSH_TIMEOUT_SEC"`
		EndNowDelaySec      int `default:"3" env:"INTERVIEW_END_NOW_DELAY_SEC"`
		SessionTTLMin       int `default:"90" env:"INTERVIEW_SESSION_TTL_MIN"`
	}
	Database struct {
		Enabled        *bool  `default:"true" env:"DB_ENABLED"`
		Host           string `default:"127.0.0.1" env:"DB_HOST"`
		Port           string `default:"5432" env:"DB_PORT"`
		Name           string `default:"interview-gateway" env:"DB_NAME"`
		User           string `default:"postgres" env:"DB_USER"`
		Password       string `default:"postgres" env:"DB_PASSWORD"`
		MigrateOnStart *bool  `default:"true" env:"DB_MIGRATE_ON_START"`
		DebugMode      *bool  `default:"false" env:"DB_DEBUG_MODE"`
	}
	S3 struct {
		Endpoint        string `default:"127.0.0.1:9000" env:"S3_ENDPOINT"`
		AccessKeyID     string `default:"" env:"S3_ACCESS_KEY_ID"`
		SecretAccessKey string `default:"" env:"S3_SECRET_ACCESS_KEY"`
		BucketName      string `default:"interview-media-archive" env:"S3_BUCKET_NAME"`
		UseSSL          *bool  `default:"false" env:"S3_USE_SSL"`
	}
}

func configFiles() []string {
	return []string{"config.yml"}
}

func InitConfig() {
	if Conf != nil {
		return
	}
	conf := new(Configuration)
	err := configor.New(&configor.Config{}).Load(conf, configFiles()...)
	if err != nil {
		panic(err)
	}
	Conf = conf
}
