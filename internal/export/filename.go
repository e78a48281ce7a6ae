package export

import (
	"fmt"

	"dutoan_backend/internal/models"
	"dutoan_backend/internal/utils"
)

// FileName is the attachment name for a project export. The name part is
// slugified so the result is always a single path element.
func FileName(p *models.Project) string {
	slug := utils.Slugify(p.Name)
	if slug == "" {
		slug = "project"
	}
	id := utils.Slugify(p.ID)
	if id == "" {
		id = "unknown"
	}
	return fmt.Sprintf("export_%s_%s.xlsx", slug, id)
}
