package efatura

import "efatura/pkg/models"

// ValidateTaxNumber performs a local format check of a Turkish tax number:
// 10 digits is a valid VKN (company) format, 11 digits a valid TCKN
// (individual) format. Checksum and registry existence are not verified;
// the portal offers no lookup for that.
//
// The check is deterministic and never fails; invalid input yields a
// structured invalid result.
func ValidateTaxNumber(taxNumber string) models.TaxNumberValidation {
	if !isDigits(taxNumber) {
		return models.TaxNumberValidation{
			TaxNumber: taxNumber,
			IsValid:   false,
			Status:    models.TaxStatusInvalidFormat,
		}
	}

	switch len(taxNumber) {
	case 10:
		return models.TaxNumberValidation{
			TaxNumber: taxNumber,
			IsValid:   true,
			Status:    models.TaxStatusValidVKN,
		}
	case 11:
		return models.TaxNumberValidation{
			TaxNumber: taxNumber,
			IsValid:   true,
			Status:    models.TaxStatusValidTCKN,
		}
	default:
		return models.TaxNumberValidation{
			TaxNumber: taxNumber,
			IsValid:   false,
			Status:    models.TaxStatusInvalidLength,
		}
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
