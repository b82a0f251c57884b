package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

var (
	_ repository.ReceiptRepository  = (*ReceiptRepo)(nil)
	_ repository.IssueRepository    = (*IssueRepo)(nil)
	_ repository.SequenceRepository = (*SequenceRepo)(nil)
)

// ReceiptRepo implementación en memoria de ReceiptRepository.
type ReceiptRepo struct{ acc access }

func (r *ReceiptRepo) Create(ctx context.Context, receipt *entity.Receipt) error {
	return r.acc.do(func(d *dataset) error {
		if _, ok := d.receipts[receipt.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, other := range d.receipts {
			if other.Code == receipt.Code {
				return domain.ErrDuplicate
			}
		}
		c := *receipt
		c.Lines = nil
		d.receipts[receipt.ID] = &c
		return nil
	})
}

func (r *ReceiptRepo) CreateLines(ctx context.Context, lines []*entity.ReceiptLine) error {
	return r.acc.do(func(d *dataset) error {
		for _, ln := range lines {
			if _, ok := d.receipts[ln.ReceiptID]; !ok {
				return domain.ErrConflict
			}
			if _, ok := d.materials[ln.MaterialID]; !ok {
				return domain.ErrConflict
			}
			c := *ln
			d.receiptLines[ln.ReceiptID] = append(d.receiptLines[ln.ReceiptID], &c)
		}
		return nil
	})
}

func (r *ReceiptRepo) GetByID(ctx context.Context, id string) (*entity.Receipt, error) {
	var out *entity.Receipt
	err := r.acc.do(func(d *dataset) error {
		if rc, ok := d.receipts[id]; ok {
			c := *rc
			out = &c
		}
		return nil
	})
	return out, err
}

// GetForUpdate igual a GetByID: la transacción en memoria ya es exclusiva.
func (r *ReceiptRepo) GetForUpdate(ctx context.Context, id string) (*entity.Receipt, error) {
	return r.GetByID(ctx, id)
}

// GetLines devuelve las líneas en orden con nombre y unidad del material.
func (r *ReceiptRepo) GetLines(ctx context.Context, receiptID string) ([]*entity.ReceiptLine, error) {
	var out []*entity.ReceiptLine
	err := r.acc.do(func(d *dataset) error {
		for _, ln := range d.receiptLines[receiptID] {
			c := *ln
			if m, ok := d.materials[ln.MaterialID]; ok {
				c.MaterialName, c.Unit = m.Name, m.Unit
			}
			out = append(out, &c)
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, err
}

func (r *ReceiptRepo) UpdateHeader(ctx context.Context, receipt *entity.Receipt) error {
	return r.acc.do(func(d *dataset) error {
		cur, ok := d.receipts[receipt.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Note, cur.Total, cur.UpdatedAt = receipt.Note, receipt.Total, receipt.UpdatedAt
		return nil
	})
}

func (r *ReceiptRepo) DeleteLines(ctx context.Context, receiptID string) error {
	return r.acc.do(func(d *dataset) error {
		delete(d.receiptLines, receiptID)
		return nil
	})
}

func (r *ReceiptRepo) Delete(ctx context.Context, id string) error {
	return r.acc.do(func(d *dataset) error {
		if _, ok := d.receipts[id]; !ok {
			return domain.ErrNotFound
		}
		delete(d.receipts, id)
		delete(d.receiptLines, id)
		return nil
	})
}

// List más recientes primero.
func (r *ReceiptRepo) List(ctx context.Context, limit, offset int) ([]*entity.Receipt, error) {
	var out []*entity.Receipt
	err := r.acc.do(func(d *dataset) error {
		for _, rc := range d.receipts {
			c := *rc
			out = append(out, &c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return newerFirst(out[i].CreatedAt, out[i].Code, out[j].CreatedAt, out[j].Code) })
	return page(out, limit, offset), err
}

// IssueRepo implementación en memoria de IssueRepository.
type IssueRepo struct{ acc access }

func (r *IssueRepo) Create(ctx context.Context, issue *entity.Issue) error {
	return r.acc.do(func(d *dataset) error {
		if _, ok := d.issues[issue.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, other := range d.issues {
			if other.Code == issue.Code {
				return domain.ErrDuplicate
			}
		}
		c := *issue
		c.Lines = nil
		d.issues[issue.ID] = &c
		return nil
	})
}

func (r *IssueRepo) CreateLines(ctx context.Context, lines []*entity.IssueLine) error {
	return r.acc.do(func(d *dataset) error {
		for _, ln := range lines {
			if _, ok := d.issues[ln.IssueID]; !ok {
				return domain.ErrConflict
			}
			if _, ok := d.products[ln.ProductID]; !ok {
				return domain.ErrConflict
			}
			c := *ln
			d.issueLines[ln.IssueID] = append(d.issueLines[ln.IssueID], &c)
		}
		return nil
	})
}

func (r *IssueRepo) GetByID(ctx context.Context, id string) (*entity.Issue, error) {
	var out *entity.Issue
	err := r.acc.do(func(d *dataset) error {
		if is, ok := d.issues[id]; ok {
			c := *is
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *IssueRepo) GetForUpdate(ctx context.Context, id string) (*entity.Issue, error) {
	return r.GetByID(ctx, id)
}

func (r *IssueRepo) GetLines(ctx context.Context, issueID string) ([]*entity.IssueLine, error) {
	var out []*entity.IssueLine
	err := r.acc.do(func(d *dataset) error {
		for _, ln := range d.issueLines[issueID] {
			c := *ln
			if p, ok := d.products[ln.ProductID]; ok {
				c.ProductName, c.Unit = p.Name, p.Unit
			}
			out = append(out, &c)
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, err
}

func (r *IssueRepo) UpdateHeader(ctx context.Context, issue *entity.Issue) error {
	return r.acc.do(func(d *dataset) error {
		cur, ok := d.issues[issue.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Note, cur.Total, cur.UpdatedAt = issue.Note, issue.Total, issue.UpdatedAt
		return nil
	})
}

func (r *IssueRepo) DeleteLines(ctx context.Context, issueID string) error {
	return r.acc.do(func(d *dataset) error {
		delete(d.issueLines, issueID)
		return nil
	})
}

func (r *IssueRepo) Delete(ctx context.Context, id string) error {
	return r.acc.do(func(d *dataset) error {
		if _, ok := d.issues[id]; !ok {
			return domain.ErrNotFound
		}
		delete(d.issues, id)
		delete(d.issueLines, id)
		return nil
	})
}

func (r *IssueRepo) List(ctx context.Context, limit, offset int) ([]*entity.Issue, error) {
	var out []*entity.Issue
	err := r.acc.do(func(d *dataset) error {
		for _, is := range d.issues {
			c := *is
			out = append(out, &c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return newerFirst(out[i].CreatedAt, out[i].Code, out[j].CreatedAt, out[j].Code) })
	return page(out, limit, offset), err
}

// SequenceRepo consecutivos diarios por prefijo.
type SequenceRepo struct{ acc access }

func (r *SequenceRepo) Next(ctx context.Context, prefix string, day time.Time) (int, error) {
	var n int
	err := r.acc.do(func(d *dataset) error {
		key := prefix + "|" + day.Format("2006-01-02")
		d.sequences[key]++
		n = d.sequences[key]
		return nil
	})
	return n, err
}

func newerFirst(at1 time.Time, code1 string, at2 time.Time, code2 string) bool {
	if !at1.Equal(at2) {
		return at1.After(at2)
	}
	return code1 > code2
}
