package employee

import (
	"errors"

	employeeerrors "github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/employee/errors"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/dberr"

	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return employeeerrors.ErrEmployeeNotFound
	}
	return dberr.Translate(err)
}
