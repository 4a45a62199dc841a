package config

// Upload limits
const (
	DefaultMaxUploadBytes int64 = 10 << 20
)

// AllowedMaterialTypes lists the MIME types accepted by the materials upload.
var AllowedMaterialTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// Table names
const (
	TableLeads              = "leads"
	TableProfiles           = "profiles"
	TableTasks              = "tasks"
	TableSubtasks           = "subtasks"
	TableTaskAttachments    = "task_attachments"
	TableSubtaskAttachments = "subtask_attachments"
	TableTaskComments       = "task_comments"
	TableSessions           = "sessions"
	TableMaterials          = "materials"
	TableTaskTags           = "task_tags"
	TableTaskTemplates      = "task_templates"
	TableProductTemplates   = "product_templates"
	TableLeadProducts       = "lead_products"
)
