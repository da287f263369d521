package sections

// Address is a postal address inside the personal section
type Address struct {
	Line1   string `json:"line1" validate:"required,max=200"`
	Line2   string `json:"line2,omitempty" validate:"max=200"`
	City    string `json:"city" validate:"required,max=100"`
	State   string `json:"state" validate:"required,max=100"`
	Pincode string `json:"pincode" validate:"required,pincode"`
}

// PersonalSection holds the applicant's personal details
type PersonalSection struct {
	Title                  string  `json:"title" validate:"required,oneof=Dr Prof Mr Ms Mrs"`
	FullName               string  `json:"full_name" validate:"required,min=2,max=100"`
	FatherName             string  `json:"father_name" validate:"required,max=100"`
	DateOfBirth            string  `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Gender                 string  `json:"gender" validate:"required,oneof=male female other"`
	Category               string  `json:"category" validate:"required,oneof=general obc sc st ews"`
	Nationality            string  `json:"nationality" validate:"required,max=50"`
	MaritalStatus          string  `json:"marital_status,omitempty" validate:"omitempty,oneof=single married divorced widowed"`
	IsPersonWithDisability bool    `json:"is_person_with_disability"`
	DisabilityType         string  `json:"disability_type,omitempty" validate:"required_if=IsPersonWithDisability true,max=100"`
	Mobile                 string  `json:"mobile" validate:"required,mobile"`
	AlternateMobile        string  `json:"alternate_mobile,omitempty" validate:"omitempty,mobile"`
	Email                  string  `json:"email" validate:"required,email"`
	CorrespondenceAddress  Address `json:"correspondence_address"`
	PermanentAddress       Address `json:"permanent_address"`
}

// EducationEntry is one qualification
type EducationEntry struct {
	ExamType        string  `json:"exam_type" validate:"required,oneof=10th 12th diploma graduation post_graduation mphil phd other"`
	DegreeName      string  `json:"degree_name" validate:"required,max=150"`
	Discipline      string  `json:"discipline,omitempty" validate:"max=150"`
	Institution     string  `json:"institution" validate:"required,max=200"`
	BoardUniversity string  `json:"board_university" validate:"required,max=200"`
	YearOfPassing   int     `json:"year_of_passing" validate:"required,year"`
	ScoreType       string  `json:"score_type" validate:"required,oneof=percentage cgpa grade"`
	Score           float64 `json:"score" validate:"required,gt=0"`
	MaxScore        float64 `json:"max_score,omitempty" validate:"omitempty,gtefield=Score"`
	Division        string  `json:"division,omitempty" validate:"omitempty,oneof=first second third distinction pass"`
}

// EducationSection lists qualifications
type EducationSection struct {
	Entries []EducationEntry `json:"entries" validate:"required,min=1,dive"`
}

// ExperienceEntry is one period of employment
type ExperienceEntry struct {
	ExperienceType    string  `json:"experience_type" validate:"required,oneof=teaching research industry administrative"`
	Organization      string  `json:"organization" validate:"required,max=200"`
	Designation       string  `json:"designation" validate:"required,max=150"`
	PayLevel          string  `json:"pay_level,omitempty" validate:"max=100"`
	GrossMonthlyPay   float64 `json:"gross_monthly_pay,omitempty" validate:"gte=0"`
	FromDate          string  `json:"from_date" validate:"required,datetime=2006-01-02"`
	ToDate            string  `json:"to_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	IsPresentEmployer bool    `json:"is_present_employer"`
	NatureOfDuties    string  `json:"nature_of_duties,omitempty" validate:"max=1000"`
}

// ExperienceSection lists employment history
type ExperienceSection struct {
	Entries []ExperienceEntry `json:"entries" validate:"required,min=1,dive"`
}

// JournalPublication is one journal article
type JournalPublication struct {
	Title        string  `json:"title" validate:"required,max=500"`
	Authors      string  `json:"authors" validate:"required,max=1000"`
	JournalName  string  `json:"journal_name" validate:"required,max=300"`
	ISSN         string  `json:"issn,omitempty" validate:"omitempty,issn"`
	Volume       string  `json:"volume,omitempty" validate:"max=20"`
	Issue        string  `json:"issue,omitempty" validate:"max=20"`
	Pages        string  `json:"pages,omitempty" validate:"max=30"`
	Year         int     `json:"year" validate:"required,year"`
	Indexing     string  `json:"indexing" validate:"required,oneof=scopus sci web_of_science ugc_care other"`
	ImpactFactor float64 `json:"impact_factor,omitempty" validate:"gte=0"`
	DOI          string  `json:"doi,omitempty" validate:"max=200"`
	AuthorRole   string  `json:"author_role" validate:"required,oneof=first corresponding co_author"`
}

// JournalSection lists journal publications
type JournalSection struct {
	Entries []JournalPublication `json:"entries" validate:"required,min=1,dive"`
}

// ConferencePublication is one conference paper
type ConferencePublication struct {
	Title          string `json:"title" validate:"required,max=500"`
	Authors        string `json:"authors" validate:"required,max=1000"`
	ConferenceName string `json:"conference_name" validate:"required,max=300"`
	Venue          string `json:"venue,omitempty" validate:"max=200"`
	Year           int    `json:"year" validate:"required,year"`
	Level          string `json:"level" validate:"required,oneof=national international"`
	Publisher      string `json:"publisher,omitempty" validate:"max=200"`
	ISBN           string `json:"isbn,omitempty" validate:"omitempty,isbn"`
}

// ConferenceSection lists conference publications
type ConferenceSection struct {
	Entries []ConferencePublication `json:"entries" validate:"required,min=1,dive"`
}

// PhDSupervisionEntry is one doctoral scholar guided
type PhDSupervisionEntry struct {
	ScholarName      string `json:"scholar_name" validate:"required,max=150"`
	ThesisTitle      string `json:"thesis_title" validate:"required,max=500"`
	University       string `json:"university" validate:"required,max=200"`
	Role             string `json:"role" validate:"required,oneof=supervisor co_supervisor"`
	Status           string `json:"status" validate:"required,oneof=ongoing submitted awarded"`
	RegistrationYear int    `json:"registration_year" validate:"required,year"`
	AwardYear        int    `json:"award_year,omitempty" validate:"required_if=Status awarded,omitempty,year,gtefield=RegistrationYear"`
}

// PhDSupervisionSection lists doctoral supervision
type PhDSupervisionSection struct {
	Entries []PhDSupervisionEntry `json:"entries" validate:"required,min=1,dive"`
}

// PatentEntry is one patent
type PatentEntry struct {
	Title             string `json:"title" validate:"required,max=500"`
	Inventors         string `json:"inventors" validate:"required,max=1000"`
	ApplicationNumber string `json:"application_number" validate:"required,max=100"`
	PatentNumber      string `json:"patent_number,omitempty" validate:"required_if=Status granted,max=100"`
	Status            string `json:"status" validate:"required,oneof=filed published granted"`
	Country           string `json:"country" validate:"required,max=100"`
	Year              int    `json:"year" validate:"required,year"`
}

// PatentSection lists patents
type PatentSection struct {
	Entries []PatentEntry `json:"entries" validate:"required,min=1,dive"`
}

// BookEntry is one book or book chapter
type BookEntry struct {
	Type         string `json:"type" validate:"required,oneof=authored edited chapter"`
	Title        string `json:"title" validate:"required,max=500"`
	ChapterTitle string `json:"chapter_title,omitempty" validate:"required_if=Type chapter,max=500"`
	Authors      string `json:"authors" validate:"required,max=1000"`
	Publisher    string `json:"publisher" validate:"required,max=200"`
	ISBN         string `json:"isbn" validate:"required,isbn"`
	Year         int    `json:"year" validate:"required,year"`
}

// BookSection lists books
type BookSection struct {
	Entries []BookEntry `json:"entries" validate:"required,min=1,dive"`
}

// OrganizedProgram is one conference, workshop or course organised
type OrganizedProgram struct {
	Title        string `json:"title" validate:"required,max=300"`
	ProgramType  string `json:"program_type" validate:"required,oneof=conference workshop seminar fdp short_term_course"`
	Role         string `json:"role" validate:"required,oneof=convener coordinator organizing_secretary member"`
	FromDate     string `json:"from_date" validate:"required,datetime=2006-01-02"`
	ToDate       string `json:"to_date" validate:"required,datetime=2006-01-02"`
	Sponsor      string `json:"sponsor,omitempty" validate:"max=200"`
	Participants int    `json:"participants,omitempty" validate:"gte=0"`
}

// OrganizedProgramSection lists organised programs
type OrganizedProgramSection struct {
	Entries []OrganizedProgram `json:"entries" validate:"required,min=1,dive"`
}

// SponsoredProject is one externally funded research project
type SponsoredProject struct {
	Title         string  `json:"title" validate:"required,max=500"`
	FundingAgency string  `json:"funding_agency" validate:"required,max=200"`
	AmountLakhs   float64 `json:"amount_lakhs" validate:"required,gt=0"`
	Role          string  `json:"role" validate:"required,oneof=principal_investigator co_investigator"`
	Status        string  `json:"status" validate:"required,oneof=ongoing completed"`
	StartYear     int     `json:"start_year" validate:"required,year"`
	EndYear       int     `json:"end_year,omitempty" validate:"required_if=Status completed,omitempty,year,gtefield=StartYear"`
}

// SponsoredProjectSection lists sponsored projects
type SponsoredProjectSection struct {
	Entries []SponsoredProject `json:"entries" validate:"required,min=1,dive"`
}

// ConsultancyProject is one consultancy assignment
type ConsultancyProject struct {
	Title       string  `json:"title" validate:"required,max=500"`
	Client      string  `json:"client" validate:"required,max=200"`
	AmountLakhs float64 `json:"amount_lakhs" validate:"required,gt=0"`
	Role        string  `json:"role" validate:"required,oneof=principal_consultant co_consultant"`
	Status      string  `json:"status" validate:"required,oneof=ongoing completed"`
	Year        int     `json:"year" validate:"required,year"`
}

// ConsultancyProjectSection lists consultancy projects
type ConsultancyProjectSection struct {
	Entries []ConsultancyProject `json:"entries" validate:"required,min=1,dive"`
}

// SubjectTaught is one course taught
type SubjectTaught struct {
	SubjectName string `json:"subject_name" validate:"required,max=200"`
	Level       string `json:"level" validate:"required,oneof=ug pg phd"`
	Institution string `json:"institution" validate:"required,max=200"`
	YearsTaught int    `json:"years_taught" validate:"required,gte=1,lte=60"`
}

// SubjectsTaughtSection lists subjects taught
type SubjectsTaughtSection struct {
	Entries []SubjectTaught `json:"entries" validate:"required,min=1,dive"`
}

// CreditPointsSection is the applicant's self-assessed academic score
type CreditPointsSection struct {
	ResearchPapers float64 `json:"research_papers" validate:"gte=0"`
	Books          float64 `json:"books" validate:"gte=0"`
	Projects       float64 `json:"projects" validate:"gte=0"`
	Guidance       float64 `json:"guidance" validate:"gte=0"`
	Other          float64 `json:"other" validate:"gte=0"`
	Total          float64 `json:"total" validate:"required,gt=0"`
}

// Referee is one person who can vouch for the applicant
type Referee struct {
	Name         string `json:"name" validate:"required,max=150"`
	Designation  string `json:"designation" validate:"required,max=150"`
	Organization string `json:"organization" validate:"required,max=200"`
	Email        string `json:"email" validate:"required,email"`
	Mobile       string `json:"mobile" validate:"required,mobile"`
	Address      string `json:"address,omitempty" validate:"max=500"`
}

// RefereesSection holds exactly two referees
type RefereesSection struct {
	Entries []Referee `json:"entries" validate:"required,len=2,dive"`
}

// OtherInfoSection collects remaining disclosures
type OtherInfoSection struct {
	Languages          string `json:"languages,omitempty" validate:"max=500"`
	Awards             string `json:"awards,omitempty" validate:"max=2000"`
	Memberships        string `json:"memberships,omitempty" validate:"max=2000"`
	NoticePeriodDays   int    `json:"notice_period_days,omitempty" validate:"gte=0,lte=365"`
	HasPendingCases    bool   `json:"has_pending_cases"`
	PendingCaseDetails string `json:"pending_case_details,omitempty" validate:"required_if=HasPendingCases true,max=2000"`
}

// DeclarationSection holds the four acknowledgements required to submit
type DeclarationSection struct {
	InformationTrue      bool   `json:"information_true" validate:"accepted"`
	AcceptsTerms         bool   `json:"accepts_terms" validate:"accepted"`
	NoCriminalRecord     bool   `json:"no_criminal_record" validate:"accepted"`
	AgreesToVerification bool   `json:"agrees_to_verification" validate:"accepted"`
	Place                string `json:"place,omitempty" validate:"max=100"`
}
