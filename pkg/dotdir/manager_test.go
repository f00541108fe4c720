package dotdir_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/dhvanilabs/sadhana/pkg/dotdir"
)

var _ = Describe("dotdir", func() {
	var tmpDir string
	var m *dotdir.Manager

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "dotdir-test-*")
		Expect(err).NotTo(HaveOccurred())

		// Resolve symlinks so paths match filepath.Abs results
		// (e.g. on macOS /var -> /private/var).
		tmpDir, err = filepath.EvalSymlinks(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		m = dotdir.NewManager()
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("Target", func() {
		It("creates the directory if it doesn't exist", func() {
			dir := filepath.Join(tmpDir, "newdir")
			result, err := m.Target(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(dir))

			info, err := os.Stat(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.IsDir()).To(BeTrue())
		})

		It("returns existing directory without error", func() {
			result, err := m.Target(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(tmpDir))
		})

		It("returns the override dir even when a local .sadhana dir exists", func() {
			localDir := filepath.Join(tmpDir, ".sadhana")
			Expect(os.Mkdir(localDir, 0o755)).To(Succeed())

			origDir, err := os.Getwd()
			Expect(err).NotTo(HaveOccurred())
			Expect(os.Chdir(tmpDir)).To(Succeed())
			DeferCleanup(func() { os.Chdir(origDir) })

			overrideDir := filepath.Join(tmpDir, "override")
			result, err := m.Target(overrideDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(overrideDir))
		})

		It("returns the local .sadhana dir when it exists and no override is provided", func() {
			localDir := filepath.Join(tmpDir, ".sadhana")
			Expect(os.Mkdir(localDir, 0o755)).To(Succeed())

			origDir, err := os.Getwd()
			Expect(err).NotTo(HaveOccurred())
			Expect(os.Chdir(tmpDir)).To(Succeed())
			DeferCleanup(func() { os.Chdir(origDir) })

			result, err := m.Target("")
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(localDir))
		})
	})

	Describe("profile overrides", func() {
		It("returns nil when no overrides file exists", func() {
			overrides, err := m.LoadProfileOverrides(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(overrides).To(BeNil())
		})

		It("round-trips overrides", func() {
			in := &dotdir.ProfileOverrides{
				GoldenProfile: "maha_mantra_v1",
				Lineages: map[string]dotdir.LineageOverride{
					"vaishnavism": {Composite: 0.8},
				},
			}
			Expect(m.SaveProfileOverrides(in, tmpDir)).To(Succeed())

			out, err := m.LoadProfileOverrides(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).NotTo(BeNil())
			Expect(out.GoldenProfile).To(Equal("maha_mantra_v1"))
			Expect(out.Lineages["vaishnavism"].Composite).To(Equal(0.8))
		})

		It("returns error for invalid JSON", func() {
			err := os.WriteFile(filepath.Join(tmpDir, "profiles.json"), []byte("not json"), 0o644)
			Expect(err).NotTo(HaveOccurred())

			overrides, err := m.LoadProfileOverrides(tmpDir)
			Expect(err).To(HaveOccurred())
			Expect(overrides).To(BeNil())
		})

		It("rejects nil overrides on save", func() {
			Expect(m.SaveProfileOverrides(nil, tmpDir)).NotTo(Succeed())
		})

		It("clears overrides idempotently", func() {
			in := &dotdir.ProfileOverrides{GoldenProfile: "maha_mantra_v1"}
			Expect(m.SaveProfileOverrides(in, tmpDir)).To(Succeed())

			Expect(m.ClearProfileOverrides(tmpDir)).To(Succeed())
			Expect(m.ClearProfileOverrides(tmpDir)).To(Succeed())

			out, err := m.LoadProfileOverrides(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(BeNil())
		})
	})
})
