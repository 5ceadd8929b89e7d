package bill

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("IsAcceptable", func() {
	DescribeTable("declared content types",
		func(contentType string, expected bool) {
			Expect(IsAcceptable(contentType)).To(Equal(expected))
		},
		Entry("jpeg", "image/jpeg", true),
		Entry("jpg", "image/jpg", true),
		Entry("png", "image/png", true),
		Entry("gif", "image/gif", true),
		Entry("json", "application/JSON", false),
		Entry("pdf", "application/pdf", false),
		Entry("upper cased subtype", "image/JPEG", false),
		Entry("heic", "image/heic", false),
		Entry("parameters appended", "image/png; charset=binary", false),
		Entry("empty", "", false),
	)
})
