package logger_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/stackchat/pkg/logger"
)

var _ = Describe("NewLoggerTo", func() {
	var buf *bytes.Buffer

	BeforeEach(func() {
		buf = &bytes.Buffer{}
	})

	It("writes info messages with structured fields", func() {
		log := logger.NewLoggerTo(buf, false)
		log.Info("conversation translated", zap.Int("message_count", 3))
		Expect(log.Sync()).To(Succeed())

		Expect(buf.String()).To(ContainSubstring("INFO"))
		Expect(buf.String()).To(ContainSubstring("conversation translated"))
		Expect(buf.String()).To(ContainSubstring(`"message_count": 3`))
	})

	It("drops debug messages unless debug is enabled", func() {
		log := logger.NewLoggerTo(buf, false)
		log.Debug("hidden")
		Expect(buf.String()).To(BeEmpty())
	})

	It("emits debug messages when debug is enabled", func() {
		log := logger.NewLoggerTo(buf, true)
		log.Debug("visible")
		Expect(buf.String()).To(ContainSubstring("DEBUG"))
		Expect(buf.String()).To(ContainSubstring("visible"))
	})

	It("does not colorize levels for non-terminal writers", func() {
		log := logger.NewLoggerTo(buf, false)
		log.Warn("plain")
		Expect(buf.String()).NotTo(ContainSubstring("\x1b["))
	})
})
