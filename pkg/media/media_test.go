package media_test

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/stackchat/pkg/media"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

var _ = Describe("Media", func() {
	var dir string

	writeFile := func(name string, data []byte) string {
		path := filepath.Join(dir, name)
		Expect(os.WriteFile(path, data, 0o600)).To(Succeed())
		return path
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	Describe("FileResolver", func() {
		It("resolves plain absolute paths", func() {
			path := writeFile("cat.png", pngHeader)

			resolved, ok := media.FileResolver{}.Resolve(path)
			Expect(ok).To(BeTrue())
			Expect(resolved).To(Equal(path))
		})

		It("resolves file URIs", func() {
			path := writeFile("cat.png", pngHeader)

			resolved, ok := media.FileResolver{}.Resolve("file://" + path)
			Expect(ok).To(BeTrue())
			Expect(resolved).To(Equal(path))
		})

		It("joins relative paths to the root", func() {
			writeFile("cat.png", pngHeader)

			resolved, ok := media.FileResolver{Root: dir}.Resolve("cat.png")
			Expect(ok).To(BeTrue())
			Expect(resolved).To(Equal(filepath.Join(dir, "cat.png")))
		})

		It("rejects empty references", func() {
			_, ok := media.FileResolver{}.Resolve("  ")
			Expect(ok).To(BeFalse())
		})

		It("rejects unsupported schemes", func() {
			_, ok := media.FileResolver{}.Resolve("content://media/external/images/media/42")
			Expect(ok).To(BeFalse())
		})

		It("rejects missing files and directories", func() {
			_, ok := media.FileResolver{}.Resolve(filepath.Join(dir, "missing.png"))
			Expect(ok).To(BeFalse())

			_, ok = media.FileResolver{}.Resolve(dir)
			Expect(ok).To(BeFalse())
		})
	})

	Describe("DetectMIME", func() {
		It("sniffs image content regardless of extension", func() {
			path := writeFile("upload.bin", pngHeader)

			mimeType, err := media.DetectMIME(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(mimeType).To(Equal("image/png"))
		})

		It("falls back to the extension when content is not recognised", func() {
			path := writeFile("photo.jpg", []byte("not really a jpeg"))

			mimeType, err := media.DetectMIME(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(mimeType).To(Equal("image/jpeg"))
		})

		It("fails for unknown content without a known extension", func() {
			path := writeFile("blob", []byte{0x00, 0x01, 0x02, 0xfe, 0xff})

			_, err := media.DetectMIME(path)
			Expect(err).To(MatchError(media.ErrUnknownMIME))
		})
	})

	Describe("EncodeDataURL", func() {
		It("produces an unwrapped base64 data URL", func() {
			path := writeFile("cat.png", pngHeader)

			dataURL, err := media.EncodeDataURL(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(dataURL).To(HavePrefix("data:image/png;base64,"))
			Expect(dataURL).NotTo(ContainSubstring("\n"))

			encoded := strings.TrimPrefix(dataURL, "data:image/png;base64,")
			decoded, err := base64.StdEncoding.DecodeString(encoded)
			Expect(err).NotTo(HaveOccurred())
			Expect(decoded).To(Equal(pngHeader))
		})
	})

	Describe("ResolveDataURL", func() {
		It("fails for unresolvable references", func() {
			_, err := media.ResolveDataURL(media.FileResolver{}, "content://nowhere")
			Expect(err).To(HaveOccurred())
		})
	})
})
