package bill

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/samber/lo"
)

var _ = Describe("Formatting", func() {
	DescribeTable("FormatDate",
		func(iso, expected string) {
			formatted, err := FormatDate(iso)
			Expect(err).NotTo(HaveOccurred())
			Expect(formatted).To(Equal(expected))
		},
		Entry("august", "2022-08-20", "20 Aoû. 22"),
		Entry("february", "2004-02-04", "4 Fév. 04"),
		Entry("may", "2001-05-31", "31 Mai. 01"),
		Entry("december", "2021-12-01", "1 Déc. 21"),
	)

	It("should reject dates that are not ISO", func() {
		_, err := FormatDate("20/08/2022")
		Expect(err).To(HaveOccurred())
	})

	DescribeTable("FormatStatus",
		func(status Status, expected string) {
			Expect(FormatStatus(status)).To(Equal(expected))
		},
		Entry("pending", StatusPending, "En attente"),
		Entry("accepted", StatusAccepted, "Accepté"),
		Entry("refused", StatusRefused, "Refused"),
	)

	Describe("Summarize", func() {
		var summaries []Summary

		BeforeEach(func() {
			summaries = Summarize([]Bill{
				{ID: "1", Name: "train", Date: "2022-08-20", Amount: lo.ToPtr(300), Status: StatusPending, FileURL: "/api/files/a.jpg", FileName: "a.jpg"},
				{ID: "2", Name: "corrupted", Date: "not a date", Status: StatusRefused},
			})
		})

		It("should keep the bill order", func() {
			Expect(summaries).To(HaveLen(2))
			Expect(summaries[0].ID).To(Equal("1"))
			Expect(summaries[1].ID).To(Equal("2"))
		})

		It("should format the date and status", func() {
			Expect(summaries[0].Date).To(Equal("20 Aoû. 22"))
			Expect(summaries[0].RawDate).To(Equal("2022-08-20"))
			Expect(summaries[0].Status).To(Equal("En attente"))
		})

		It("should carry the receipt reference", func() {
			Expect(summaries[0].FileURL).To(Equal("/api/files/a.jpg"))
			Expect(summaries[0].FileName).To(Equal("a.jpg"))
		})

		It("should show an unparsable date as stored", func() {
			Expect(summaries[1].Date).To(Equal("not a date"))
			Expect(summaries[1].Status).To(Equal("Refused"))
		})
	})
})
