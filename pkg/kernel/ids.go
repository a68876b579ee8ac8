package kernel

type ProjectID string

func NewProjectID(id string) ProjectID { return ProjectID(id) }
func (p ProjectID) String() string     { return string(p) }
func (p ProjectID) IsEmpty() bool      { return string(p) == "" }

type PageID string

func NewPageID(id string) PageID { return PageID(id) }
func (p PageID) String() string  { return string(p) }
func (p PageID) IsEmpty() bool   { return string(p) == "" }

type MaterialID string

func NewMaterialID(id string) MaterialID { return MaterialID(id) }
func (m MaterialID) String() string      { return string(m) }
func (m MaterialID) IsEmpty() bool       { return string(m) == "" }

type TemplateID string

func NewTemplateID(id string) TemplateID { return TemplateID(id) }
func (t TemplateID) String() string      { return string(t) }
func (t TemplateID) IsEmpty() bool       { return string(t) == "" }

type JobID string

func NewJobID(id string) JobID { return JobID(id) }
func (j JobID) String() string { return string(j) }
func (j JobID) IsEmpty() bool  { return string(j) == "" }
