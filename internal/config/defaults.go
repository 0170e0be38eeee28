package config

const (
	defaultRootDir           = "~/pdfs"
	defaultLogDir            = "~/.local/share/duplex/logs"
	defaultEngineBinary      = "pdf2zh"
	defaultLangIn            = "en"
	defaultLangOut           = "zh"
	defaultService           = "siliconflow_free"
	defaultWatermarkMode     = "no_watermark"
	defaultQPSLimit          = 4
	defaultPaceSeconds       = 2
	defaultEngineTimeout     = 1800
	defaultProbeBaseURL      = "https://api.siliconflow.cn/v1"
	defaultProbeModel        = "Qwen/Qwen2.5-VL-32B-Instruct"
	defaultProbeSamplePages  = 3
	defaultProbeDPI          = 150
	defaultProbeDetail       = "low"
	defaultProbeTimeout      = 60
	defaultRendererBinary    = "pdftoppm"
	defaultMaxSizeBytes      = 50 << 20
	defaultPageCeiling       = 80
	defaultGapPt             = 18.0
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultFreeServiceModel  = "Qwen/Qwen2.5-7B-Instruct"
	defaultEngineBaseURLNone = ""
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			RootDir: defaultRootDir,
			LogDir:  defaultLogDir,
		},
		Engine: Engine{
			Binary:         defaultEngineBinary,
			LangIn:         defaultLangIn,
			LangOut:        defaultLangOut,
			Service:        defaultService,
			WatermarkMode:  defaultWatermarkMode,
			QPSLimit:       defaultQPSLimit,
			PaceSeconds:    defaultPaceSeconds,
			TimeoutSeconds: defaultEngineTimeout,
		},
		Probe: Probe{
			Model:          defaultProbeModel,
			BaseURL:        defaultProbeBaseURL,
			SamplePages:    defaultProbeSamplePages,
			DPI:            defaultProbeDPI,
			Detail:         defaultProbeDetail,
			TimeoutSeconds: defaultProbeTimeout,
			RendererBinary: defaultRendererBinary,
		},
		Skip: Skip{
			TranslatedMetadata: true,
			MaxFileSize:        true,
			MaxSizeBytes:       defaultMaxSizeBytes,
			MaxPages:           true,
			PageCeiling:        defaultPageCeiling,
			FilenameFormat:     true,
			FilenameScript:     true,
			KeywordFilter:      true,
			LanguageProbe:      true,
		},
		Merge: Merge{
			GapPt: defaultGapPt,
		},
		Cleanup: Cleanup{
			DeleteMono:           true,
			DeleteAllExceptFinal: false,
			SuppressSkipped:      false,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// FreeServiceModel is the model identifier recorded in provenance metadata when
// the free service tier is selected.
const FreeServiceModel = defaultFreeServiceModel
