package bill

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LocalStorage", func() {
	var (
		ctx     context.Context
		tmpDir  string
		storage Storage
	)

	BeforeEach(func() {
		ctx = context.Background()
		tmpDir = GinkgoT().TempDir()
		var err error
		storage, err = NewLocalStorage(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Save", func() {
		var (
			key      string
			savedKey string
			err      error
		)

		BeforeEach(func() {
			key = "test.jpg"
		})

		JustBeforeEach(func() {
			savedKey, err = storage.Save(ctx, key, jpegData)
		})

		When("saving succeeds", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return the key", func() {
				Expect(savedKey).To(Equal(key))
			})

			It("should save the file to disk", func() {
				Expect(filepath.Join(tmpDir, key)).To(BeAnExistingFile())
			})
		})

		When("the key tries to leave the storage directory", func() {
			BeforeEach(func() {
				key = "../escape.jpg"
			})

			It("should keep the file inside the storage directory", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(savedKey).To(Equal("escape.jpg"))
				Expect(filepath.Join(tmpDir, "escape.jpg")).To(BeAnExistingFile())
			})
		})
	})

	Describe("Get", func() {
		var (
			key  string
			data []byte
			err  error
		)

		JustBeforeEach(func() {
			data, err = storage.Get(ctx, key)
		})

		When("file exists", func() {
			BeforeEach(func() {
				key = "test.jpg"
				_, saveErr := storage.Save(ctx, key, jpegData)
				Expect(saveErr).NotTo(HaveOccurred())
			})

			It("should return the correct file data", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(data).To(Equal(jpegData))
			})
		})

		When("file does not exist", func() {
			BeforeEach(func() {
				key = "nonexistent.jpg"
			})

			It("returns a not found error", func() {
				Expect(IsNotFound(err)).To(BeTrue())
				Expect(err.Error()).To(ContainSubstring("reading file"))
			})
		})
	})

	Describe("NewLocalStorage", func() {
		When("directory does not exist", func() {
			It("should create the directory", func() {
				storagePath := filepath.Join(GinkgoT().TempDir(), "receipts")
				_, err := NewLocalStorage(storagePath)
				Expect(err).NotTo(HaveOccurred())
				Expect(storagePath).To(BeADirectory())
			})
		})
	})
})
