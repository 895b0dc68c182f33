package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/tbxark/formfiller/agent"
	"github.com/tbxark/formfiller/fields"
	"github.com/tbxark/formfiller/types"
)

var invoiceFields = fields.MustNew(
	fields.Field{Name: "title", Kind: fields.String, Required: true, Description: "报销抬头", MaxLength: 80},
	fields.Field{Name: "amount", Kind: fields.Number, Required: true, Description: "金额", Min: fields.Bound(0.01)},
	fields.Field{Name: "date", Kind: fields.Date, Required: true, Description: "日期，格式为 YYYY-MM-DD"},
	fields.Field{
		Name:        "category",
		Kind:        fields.Enum,
		Required:    true,
		Description: "类别",
		Options:     []string{"travel", "meal", "office", "other"},
	},
	fields.Field{Name: "payee", Kind: fields.String, Required: true, Description: "收款人"},
	fields.Field{Name: "payee_email", Kind: fields.Email, Description: "收款人邮箱"},
	fields.Field{Name: "description", Kind: fields.String, Description: "备注", MaxLength: 500},
)

// InvoiceManager receives submitted invoices.
type InvoiceManager struct{}

func (m *InvoiceManager) Submit(ctx context.Context, record types.Record) (string, error) {
	id := "INV-" + strings.ToUpper(uuid.NewString()[:8])
	slog.Info("Invoice form submitted", "id", id, "form", record)
	return id, nil
}

func invoiceDefinition(m *InvoiceManager) agent.Definition[string] {
	return agent.Definition[string]{
		Name:                 "InvoiceFiller",
		Description:          "用于提交报销申请的表单，包含报销抬头、金额、日期、类别、收款人和备注等字段。",
		Fields:               invoiceFields,
		RequiresConfirmation: true,
		Submit:               m.Submit,
	}
}

func formatSubmission(id string) string {
	return fmt.Sprintf("报销单已提交，单号 %s。", id)
}
