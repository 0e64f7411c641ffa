package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jabenlo/pstep-bank-store/internal/model"
	"github.com/jabenlo/pstep-bank-store/internal/repository"
	"github.com/jabenlo/pstep-bank-store/pkg/prom"
)

const statementTimeLayout = "2006-01-02 15:04:05"

// StatementRow is one line of activity on the exported statement. Amount is
// pre-formatted with its sign, purchases showing as negative.
type StatementRow struct {
	Date        time.Time
	Kind        string
	Amount      string
	Description string
}

type Statement struct {
	Student     *model.Student
	GeneratedAt time.Time
	Rows        []StatementRow
}

// StatementService builds the downloadable account statement, merging the
// ledger and purchase history into one reverse-chronological view.
type StatementService struct {
	students     *repository.StudentRepository
	transactions *repository.TransactionRepository
	purchases    *repository.PurchaseRepository
}

func NewStatementService(
	students *repository.StudentRepository,
	transactions *repository.TransactionRepository,
	purchases *repository.PurchaseRepository,
) *StatementService {
	return &StatementService{
		students:     students,
		transactions: transactions,
		purchases:    purchases,
	}
}

func (s *StatementService) BuildStatement(ctx context.Context, teacherID, studentID int64) (*Statement, error) {
	student, err := s.students.FindForTeacher(ctx, studentID, teacherID)
	if err != nil {
		return nil, err
	}

	txns, err := s.transactions.ListByStudent(ctx, studentID, 0)
	if err != nil {
		return nil, err
	}

	purchases, err := s.purchases.ListByStudent(ctx, studentID, 0)
	if err != nil {
		return nil, err
	}

	rows := make([]StatementRow, 0, len(txns)+len(purchases))
	for _, txn := range txns {
		rows = append(rows, StatementRow{
			Date:        txn.CreatedAt,
			Kind:        kindLabel(txn.Kind),
			Amount:      "$" + txn.Amount.StringFixed(2),
			Description: txn.Description,
		})
	}
	for _, p := range purchases {
		rows = append(rows, StatementRow{
			Date:        p.CreatedAt,
			Kind:        "Purchase",
			Amount:      "-$" + p.TotalAmount.StringFixed(2),
			Description: fmt.Sprintf("Purchased %dx %s", p.Quantity, p.Item.Name),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.After(rows[j].Date)
	})

	prom.IncCounter(prom.SystemBank, prom.MetricStatementsExported)

	return &Statement{
		Student:     student,
		GeneratedAt: time.Now(),
		Rows:        rows,
	}, nil
}

// WriteCSV renders the statement: a title block, a blank row, then the
// activity table. The Balance After column is present in the header but
// intentionally left empty; historical running balances are not
// reconstructed.
func (s *StatementService) WriteCSV(w io.Writer, st *Statement) error {
	cw := csv.NewWriter(w)

	header := [][]string{
		{"PSTEP Classroom Bank Statement"},
		{"Student Name:", st.Student.Name},
		{"Student ID:", st.Student.ExternalID},
		{"Current Balance:", "$" + st.Student.Balance.StringFixed(2)},
		{"Generated:", st.GeneratedAt.Format(statementTimeLayout)},
		{},
		{"Date", "Type", "Amount", "Description", "Balance After"},
	}
	for _, row := range header {
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	for _, row := range st.Rows {
		record := []string{
			row.Date.Format(statementTimeLayout),
			row.Kind,
			row.Amount,
			row.Description,
			"",
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// Filename builds the suggested download name from the student's name and
// classroom id.
func (s *StatementService) Filename(st *Statement) string {
	name := strings.ReplaceAll(st.Student.Name, " ", "_")
	return fmt.Sprintf("%s_%s_statement.csv", name, st.Student.ExternalID)
}

func kindLabel(kind model.TransactionKind) string {
	switch kind {
	case model.KindCredit:
		return "Credit"
	case model.KindDebit:
		return "Debit"
	}
	return string(kind)
}
