package internal

// Zone value meaning "every store" in filters and lookups.
const AllZones = "Todas"

type ReportType string

const (
	ReportFull      ReportType = "Completo"
	ReportNotesOnly ReportType = "Solo Notas"
)

type Article struct {
	Reference     string `json:"Referencia"`
	Section       string `json:"Sección"`
	Description   string `json:"Descripción"`
	Family        string `json:"Familia"`
	LastProvider  string `json:"Ult.Pro"`
	LastCost      string `json:"Ult. Costo"`
	VAT           string `json:"IVA"`
	UnitOfMeasure string `json:"UniMed,omitempty"`
}

type Tariff struct {
	Code        string `json:"Cod."`
	Store       string `json:"Tienda"`
	ArticleRef  string `json:"Cód. Art."`
	Description string `json:"Descripción"`
	ListPrice   string `json:"P.V.P."`
	OfferPrice  string `json:"PVP Oferta"`
	OfferStart  string `json:"Fec.Ini.Ofe."`
	OfferEnd    string `json:"Fec.Fin.Ofe."`
}

type PointOfSale struct {
	ID      string `json:"id"`
	Code    string `json:"código"`
	Zone    string `json:"zona"`
	Group   string `json:"grupo"`
	Address string `json:"dirección"`
	City    string `json:"población"`
}

type Family struct {
	ID   string `json:"id"`
	Name string `json:"nombre"`
}

type Group struct {
	ID   string `json:"id"`
	Name string `json:"nombre"`
}

type UserRole string

const (
	RoleNormal     UserRole = "Normal"
	RoleSupervisor UserRole = "Supervisor"
	RoleAdmin      UserRole = "admin"
)

type User struct {
	ID         string   `json:"id"`
	Name       string   `json:"nombre"`
	Password   string   `json:"clave"`
	Zone       string   `json:"zona"`
	Group      string   `json:"grupo"`
	Department string   `json:"departamento"`
	Role       UserRole `json:"rol"`
	ShowPVP    bool     `json:"verPVP"`
}

type Report struct {
	ID             string     `json:"id"`
	Date           string     `json:"date"`
	SupervisorName string     `json:"supervisorName"`
	ZoneFilter     string     `json:"zoneFilter"`
	Type           ReportType `json:"type"`
	CSVContent     string     `json:"csvContent"`
	Read           bool       `json:"read"`
}

type Backup struct {
	ID   string  `json:"id"`
	Name string  `json:"nombre"`
	Data AppData `json:"data"`
	Date string  `json:"fecha"`
}

// AppData is the full snapshot exchanged with the persistence layer and
// written to JSON backups.
type AppData struct {
	Users       []User        `json:"users"`
	POS         []PointOfSale `json:"pos"`
	Articles    []Article     `json:"articulos"`
	Tariffs     []Tariff      `json:"tarifas"`
	Groups      []Group       `json:"groups"`
	Families    []Family      `json:"families"`
	CompanyName string        `json:"companyName,omitempty"`
	LastUpdated string        `json:"lastUpdated,omitempty"`
	Reports     []Report      `json:"reports,omitempty"`
	Backups     []Backup      `json:"backups,omitempty"`
}

// AppDataPatch names the collections replaced by a merge-write. Nil fields
// are left untouched; a non-nil empty slice clears the collection.
type AppDataPatch struct {
	Users       *[]User
	POS         *[]PointOfSale
	Articles    *[]Article
	Tariffs     *[]Tariff
	Groups      *[]Group
	Families    *[]Family
	CompanyName *string
	Reports     *[]Report
	Backups     *[]Backup
}

type MailMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}

type InboundMail struct {
	ID         int
	Provider   string
	MessageID  string
	Subject    string
	Sender     string
	ReceivedAt string
	Hash       string
	Status     string
	RawRef     string
}
