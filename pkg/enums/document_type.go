package enums

// DocumentType classifies a KYC document. GST is the tax registration and PAN the
// national tax identity card.
type DocumentType string

const (
	DocumentTypeGST                     DocumentType = "GST"
	DocumentTypePAN                     DocumentType = "PAN"
	DocumentTypeRegistrationCertificate DocumentType = "Registration Certificate"
	DocumentTypeOther                   DocumentType = "Other"
)

var documentTypes = []DocumentType{
	DocumentTypeGST,
	DocumentTypePAN,
	DocumentTypeRegistrationCertificate,
	DocumentTypeOther,
}

func (d DocumentType) String() string { return string(d) }

func (d DocumentType) IsValid() bool { return member(documentTypes, d) }

func ParseDocumentType(value string) (DocumentType, error) {
	return parse(documentTypes, "document type", value, true)
}
