package extractor

import (
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/lintang-b-s/navigatorx-extractor/pkg/storage"
	"github.com/lintang-b-s/navigatorx-extractor/pkg/util"
)

type Config struct {
	// OutputBase is the path prefix of every output file, e.g. "./data/solo_jogja".
	OutputBase string `validate:"required"`
	// Workers bounds the goroutines used for edge and restriction preparation. 0 = number of CPUs.
	Workers int `validate:"gte=0,lte=1024"`
	// Compress frames every output file with zstd.
	Compress bool
	// MetricsFile, if set, receives the run's prometheus metrics in text format.
	MetricsFile string `validate:"omitempty,endswith=.prom"`
	// SpatialIndexDir, if set, is the badger directory for the H3 edge index.
	SpatialIndexDir string
	// SmallComponentSize is the node count below which a strongly connected component is reported as small.
	SmallComponentSize int `validate:"gte=1"`
}

func NewConfig(outputBase string) Config {
	return Config{OutputBase: outputBase, SmallComponentSize: DEFAULT_SMALL_COMPONENT_SIZE}
}

func (c Config) OutputFiles() storage.OutputFiles {
	return storage.NewOutputFiles(c.OutputBase)
}

func (c Config) Validate() error {
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")

	validate := validator.New()
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return util.WrapErrorf(err, util.ErrBadConfig, "registering validator translations")
	}

	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return util.WrapErrorf(err, util.ErrBadConfig, "invalid config")
	}
	msgs := make([]string, 0, len(validationErrs))
	for _, msg := range validationErrs.Translate(trans) {
		msgs = append(msgs, msg)
	}
	return util.NewErrorf(util.ErrBadConfig, "invalid config: %s", strings.Join(msgs, "; "))
}
