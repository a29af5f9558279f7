package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"tenderbook-backend/internal/database"
	"tenderbook-backend/internal/models"
)

type LogOptions struct {
	TenderID    *uint
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

func WriteLog(opts LogOptions) error {
	// Postgres jsonb rejects the empty string; store the JSON null instead
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	log := models.AuditLog{
		TenderID:    opts.TenderID,
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
		Undone:      false,
		IsUndone:    false,
	}

	if err := database.DB.Create(&log).Error; err != nil {
		return fmt.Errorf("could not write audit log: %w", err)
	}

	return nil
}

// UndoLog reverts the change a log row describes
func UndoLog(logID uint, userID uint, userName string) error {
	var log models.AuditLog
	if err := database.DB.First(&log, "id = ?", logID).Error; err != nil {
		return fmt.Errorf("log not found: %w", err)
	}

	if log.IsUndone {
		return fmt.Errorf("this change was already undone")
	}

	switch log.Action {
	case models.AuditActionCreate:
		if err := deleteEntity(log.EntityType, log.EntityID); err != nil {
			return fmt.Errorf("could not delete entity: %w", err)
		}

	case models.AuditActionUpdate:
		if err := restoreEntity(log.EntityType, log.EntityID, log.BeforeData); err != nil {
			return fmt.Errorf("could not restore entity: %w", err)
		}

	case models.AuditActionDelete:
		if err := recreateEntity(log.EntityType, log.AfterData); err != nil {
			return fmt.Errorf("could not recreate entity: %w", err)
		}

	default:
		return fmt.Errorf("this action cannot be undone")
	}

	now := time.Now()
	log.IsUndone = true
	log.UndoneBy = &userID
	log.UndoneAt = &now

	if err := database.DB.Save(&log).Error; err != nil {
		return fmt.Errorf("could not update log: %w", err)
	}

	undoLog := models.AuditLog{
		TenderID:    log.TenderID,
		UserID:      userID,
		UserName:    userName,
		EntityType:  log.EntityType,
		EntityID:    log.EntityID,
		Action:      models.AuditActionUndo,
		Description: fmt.Sprintf("Undone: %s", log.Description),
		BeforeData:  log.AfterData,
		AfterData:   log.BeforeData,
		Undone:      true,
		IsUndone:    false,
	}

	if err := database.DB.Create(&undoLog).Error; err != nil {
		return fmt.Errorf("could not write undo log: %w", err)
	}

	return nil
}

func deleteEntity(entityType string, entityID uint) error {
	switch entityType {
	case "person":
		return database.DB.Delete(&models.Person{}, "id = ?", entityID).Error
	case "vendor":
		return database.DB.Delete(&models.Vendor{}, "id = ?", entityID).Error
	case "person_advance":
		return database.DB.Delete(&models.PersonAdvance{}, "id = ?", entityID).Error
	case "person_expense":
		return database.DB.Delete(&models.PersonExpense{}, "id = ?", entityID).Error
	case "activity_expense":
		return database.DB.Delete(&models.ActivityExpense{}, "id = ?", entityID).Error
	case "labor_entry":
		return database.DB.Delete(&models.LaborEntry{}, "id = ?", entityID).Error
	case "material_purchase":
		return database.DB.Delete(&models.MaterialPurchase{}, "id = ?", entityID).Error
	case "vendor_purchase":
		return database.DB.Delete(&models.VendorPurchase{}, "id = ?", entityID).Error
	case "vendor_payment":
		return database.DB.Delete(&models.VendorPayment{}, "id = ?", entityID).Error
	default:
		return fmt.Errorf("unknown entity type: %s", entityType)
	}
}

func recreateEntity(entityType string, dataJSON string) error {
	switch entityType {
	case "person":
		var p models.Person
		if err := json.Unmarshal([]byte(dataJSON), &p); err != nil {
			return err
		}
		p.ID = 0
		return database.DB.Create(&p).Error

	case "vendor":
		var v models.Vendor
		if err := json.Unmarshal([]byte(dataJSON), &v); err != nil {
			return err
		}
		v.ID = 0
		return database.DB.Create(&v).Error

	case "person_advance":
		var adv models.PersonAdvance
		if err := json.Unmarshal([]byte(dataJSON), &adv); err != nil {
			return err
		}
		adv.ID = 0
		return database.DB.Create(&adv).Error

	case "person_expense":
		var exp models.PersonExpense
		if err := json.Unmarshal([]byte(dataJSON), &exp); err != nil {
			return err
		}
		exp.ID = 0
		return database.DB.Create(&exp).Error

	case "activity_expense":
		var exp models.ActivityExpense
		if err := json.Unmarshal([]byte(dataJSON), &exp); err != nil {
			return err
		}
		exp.ID = 0
		return database.DB.Create(&exp).Error

	case "labor_entry":
		var entry models.LaborEntry
		if err := json.Unmarshal([]byte(dataJSON), &entry); err != nil {
			return err
		}
		entry.ID = 0
		return database.DB.Create(&entry).Error

	case "material_purchase":
		var mp models.MaterialPurchase
		if err := json.Unmarshal([]byte(dataJSON), &mp); err != nil {
			return err
		}
		mp.ID = 0
		return database.DB.Create(&mp).Error

	case "vendor_purchase":
		var vp models.VendorPurchase
		if err := json.Unmarshal([]byte(dataJSON), &vp); err != nil {
			return err
		}
		vp.ID = 0
		return database.DB.Create(&vp).Error

	case "vendor_payment":
		var vp models.VendorPayment
		if err := json.Unmarshal([]byte(dataJSON), &vp); err != nil {
			return err
		}
		vp.ID = 0
		return database.DB.Create(&vp).Error

	default:
		return fmt.Errorf("unknown entity type: %s", entityType)
	}
}

func restoreEntity(entityType string, entityID uint, dataJSON string) error {
	switch entityType {
	case "person":
		var p models.Person
		if err := json.Unmarshal([]byte(dataJSON), &p); err != nil {
			return err
		}
		return database.DB.Model(&models.Person{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"tender_id": p.TenderID,
			"name":      p.Name,
			"phone":     p.Phone,
			"role":      p.Role,
			"notes":     p.Notes,
		}).Error

	case "vendor":
		var v models.Vendor
		if err := json.Unmarshal([]byte(dataJSON), &v); err != nil {
			return err
		}
		return database.DB.Model(&models.Vendor{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"tender_id": v.TenderID,
			"name":      v.Name,
			"phone":     v.Phone,
			"address":   v.Address,
			"notes":     v.Notes,
		}).Error

	case "person_advance":
		var adv models.PersonAdvance
		if err := json.Unmarshal([]byte(dataJSON), &adv); err != nil {
			return err
		}
		return database.DB.Model(&models.PersonAdvance{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"tender_id":         adv.TenderID,
			"person_id":         adv.PersonID,
			"user_id":           adv.UserID,
			"date":              adv.Date,
			"amount":            adv.Amount,
			"payment_method":    adv.PaymentMethod,
			"payment_reference": adv.PaymentReference,
			"purpose":           adv.Purpose,
			"notes":             adv.Notes,
		}).Error

	case "person_expense":
		var exp models.PersonExpense
		if err := json.Unmarshal([]byte(dataJSON), &exp); err != nil {
			return err
		}
		return database.DB.Model(&models.PersonExpense{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"tender_id":   exp.TenderID,
			"person_id":   exp.PersonID,
			"user_id":     exp.UserID,
			"date":        exp.Date,
			"amount":      exp.Amount,
			"description": exp.Description,
			"notes":       exp.Notes,
		}).Error

	case "activity_expense":
		var exp models.ActivityExpense
		if err := json.Unmarshal([]byte(dataJSON), &exp); err != nil {
			return err
		}
		return database.DB.Model(&models.ActivityExpense{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"tender_id":         exp.TenderID,
			"date":              exp.Date,
			"amount":            exp.Amount,
			"description":       exp.Description,
			"record_kind":       exp.RecordKind,
			"payment_method":    exp.PaymentMethod,
			"payment_reference": exp.PaymentReference,
			"notes":             exp.Notes,
		}).Error

	case "labor_entry":
		var entry models.LaborEntry
		if err := json.Unmarshal([]byte(dataJSON), &entry); err != nil {
			return err
		}
		return database.DB.Model(&models.LaborEntry{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"tender_id":    entry.TenderID,
			"date":         entry.Date,
			"category":     entry.Category,
			"headcount":    entry.Headcount,
			"daily_rate":   entry.DailyRate,
			"khoraki":      entry.Khoraki,
			"total_amount": entry.TotalAmount,
			"notes":        entry.Notes,
		}).Error

	case "material_purchase":
		var mp models.MaterialPurchase
		if err := json.Unmarshal([]byte(dataJSON), &mp); err != nil {
			return err
		}
		return database.DB.Model(&models.MaterialPurchase{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"tender_id":      mp.TenderID,
			"vendor_id":      mp.VendorID,
			"date":           mp.Date,
			"material_name":  mp.MaterialName,
			"quantity":       mp.Quantity,
			"unit":           mp.Unit,
			"unit_price":     mp.UnitPrice,
			"total_amount":   mp.TotalAmount,
			"payment_method": mp.PaymentMethod,
			"notes":          mp.Notes,
		}).Error

	case "vendor_purchase":
		var vp models.VendorPurchase
		if err := json.Unmarshal([]byte(dataJSON), &vp); err != nil {
			return err
		}
		return database.DB.Model(&models.VendorPurchase{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"tender_id":   vp.TenderID,
			"vendor_id":   vp.VendorID,
			"date":        vp.Date,
			"amount":      vp.Amount,
			"description": vp.Description,
			"notes":       vp.Notes,
		}).Error

	case "vendor_payment":
		var vp models.VendorPayment
		if err := json.Unmarshal([]byte(dataJSON), &vp); err != nil {
			return err
		}
		return database.DB.Model(&models.VendorPayment{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"tender_id":         vp.TenderID,
			"vendor_id":         vp.VendorID,
			"date":              vp.Date,
			"amount":            vp.Amount,
			"payment_method":    vp.PaymentMethod,
			"payment_reference": vp.PaymentReference,
			"notes":             vp.Notes,
		}).Error

	default:
		return fmt.Errorf("restore not supported for entity type: %s", entityType)
	}
}
