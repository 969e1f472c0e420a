package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/r3e-network/rwa-control-plane/internal/domain/bank"
	"github.com/r3e-network/rwa-control-plane/internal/domain/investor"
	"github.com/r3e-network/rwa-control-plane/internal/domain/user"
	domainerrors "github.com/r3e-network/rwa-control-plane/internal/errors"
)

type userRow struct {
	ID            string    `db:"id"`
	Email         string    `db:"email"`
	WalletAddress string    `db:"wallet_address"`
	Role          string    `db:"role"`
	KYCStatus     string    `db:"kyc_status"`
	IsActive      bool      `db:"is_active"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (r userRow) toDomain() user.User {
	return user.User{
		ID:            r.ID,
		Email:         r.Email,
		WalletAddress: r.WalletAddress,
		Role:          user.Role(r.Role),
		KYCStatus:     user.KYCStatus(r.KYCStatus),
		IsActive:      r.IsActive,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now

	_, err := s.querier(ctx).ExecContext(ctx, `
		INSERT INTO users (id, email, wallet_address, role, kyc_status, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, u.ID, u.Email, u.WalletAddress, string(u.Role), string(u.KYCStatus), u.IsActive, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return user.User{}, wrapInsertErr("USER", "USER_ALREADY_EXISTS", "a user with this email or wallet address already exists", err)
	}
	return u, nil
}

func (s *Store) UpdateUser(ctx context.Context, u user.User) (user.User, error) {
	u.UpdatedAt = time.Now().UTC()
	_, err := s.querier(ctx).ExecContext(ctx, `
		UPDATE users SET email=$2, wallet_address=$3, role=$4, kyc_status=$5, is_active=$6, updated_at=$7
		WHERE id=$1
	`, u.ID, u.Email, u.WalletAddress, string(u.Role), string(u.KYCStatus), u.IsActive, u.UpdatedAt)
	if err != nil {
		return user.User{}, domainerrors.Wrap(domainerrors.CodeInternal, "USER_UPDATE_FAILED", "failed to update user", err)
	}
	return s.GetUser(ctx, u.ID)
}

func (s *Store) GetUser(ctx context.Context, id string) (user.User, error) {
	var row userRow
	err := s.querier(ctx).GetContext(ctx, &row, `SELECT * FROM users WHERE id=$1`, id)
	if err != nil {
		return user.User{}, wrapQueryErr("user", id, err)
	}
	return row.toDomain(), nil
}

func (s *Store) GetUserByWallet(ctx context.Context, walletAddress string) (user.User, error) {
	var row userRow
	err := s.querier(ctx).GetContext(ctx, &row, `SELECT * FROM users WHERE wallet_address=$1`, walletAddress)
	if err != nil {
		return user.User{}, wrapQueryErr("user", walletAddress, err)
	}
	return row.toDomain(), nil
}

func (s *Store) ListUsers(ctx context.Context) ([]user.User, error) {
	var rows []userRow
	if err := s.querier(ctx).SelectContext(ctx, &rows, `SELECT * FROM users ORDER BY created_at`); err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "USER_LIST_FAILED", "failed to list users", err)
	}
	out := make([]user.User, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

type investorRow struct {
	ID                  string    `db:"id"`
	UserID              string    `db:"user_id"`
	FirstName           string    `db:"first_name"`
	LastName            string    `db:"last_name"`
	Country             string    `db:"country"`
	InvestorType        string    `db:"investor_type"`
	RiskTolerance       string    `db:"risk_tolerance"`
	AccreditationStatus string    `db:"accreditation_status"`
	CreatedAt           time.Time `db:"created_at"`
	UpdatedAt           time.Time `db:"updated_at"`
}

func (r investorRow) toDomain() investor.Profile {
	return investor.Profile{
		ID:                  r.ID,
		UserID:              r.UserID,
		FirstName:           r.FirstName,
		LastName:            r.LastName,
		Country:             r.Country,
		InvestorType:        r.InvestorType,
		RiskTolerance:       investor.RiskTolerance(r.RiskTolerance),
		AccreditationStatus: investor.AccreditationStatus(r.AccreditationStatus),
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

func (s *Store) CreateInvestor(ctx context.Context, inv investor.Profile) (investor.Profile, error) {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	inv.CreatedAt, inv.UpdatedAt = now, now

	_, err := s.querier(ctx).ExecContext(ctx, `
		INSERT INTO investor_profiles (id, user_id, first_name, last_name, country, investor_type, risk_tolerance, accreditation_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, inv.ID, inv.UserID, inv.FirstName, inv.LastName, inv.Country, inv.InvestorType,
		string(inv.RiskTolerance), string(inv.AccreditationStatus), inv.CreatedAt, inv.UpdatedAt)
	if err != nil {
		return investor.Profile{}, wrapInsertErr("INVESTOR", "INVESTOR_ALREADY_EXISTS", "this user already has an investor profile", err)
	}
	return inv, nil
}

func (s *Store) UpdateInvestor(ctx context.Context, inv investor.Profile) (investor.Profile, error) {
	inv.UpdatedAt = time.Now().UTC()
	_, err := s.querier(ctx).ExecContext(ctx, `
		UPDATE investor_profiles SET first_name=$2, last_name=$3, country=$4, investor_type=$5,
			risk_tolerance=$6, accreditation_status=$7, updated_at=$8
		WHERE id=$1
	`, inv.ID, inv.FirstName, inv.LastName, inv.Country, inv.InvestorType,
		string(inv.RiskTolerance), string(inv.AccreditationStatus), inv.UpdatedAt)
	if err != nil {
		return investor.Profile{}, domainerrors.Wrap(domainerrors.CodeInternal, "INVESTOR_UPDATE_FAILED", "failed to update investor profile", err)
	}
	return s.GetInvestor(ctx, inv.ID)
}

func (s *Store) GetInvestor(ctx context.Context, id string) (investor.Profile, error) {
	var row investorRow
	err := s.querier(ctx).GetContext(ctx, &row, `SELECT * FROM investor_profiles WHERE id=$1`, id)
	if err != nil {
		return investor.Profile{}, wrapQueryErr("investor", id, err)
	}
	return row.toDomain(), nil
}

func (s *Store) GetInvestorByUserID(ctx context.Context, userID string) (investor.Profile, error) {
	var row investorRow
	err := s.querier(ctx).GetContext(ctx, &row, `SELECT * FROM investor_profiles WHERE user_id=$1`, userID)
	if err != nil {
		return investor.Profile{}, wrapQueryErr("investor", userID, err)
	}
	return row.toDomain(), nil
}

func (s *Store) ListInvestors(ctx context.Context) ([]investor.Profile, error) {
	var rows []investorRow
	if err := s.querier(ctx).SelectContext(ctx, &rows, `SELECT * FROM investor_profiles ORDER BY created_at`); err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "INVESTOR_LIST_FAILED", "failed to list investor profiles", err)
	}
	out := make([]investor.Profile, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

type bankRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Code        string    `db:"code"`
	AdminUserID string    `db:"admin_user_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r bankRow) toDomain() bank.Bank {
	return bank.Bank{
		ID:          r.ID,
		Name:        r.Name,
		Code:        r.Code,
		AdminUserID: r.AdminUserID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (s *Store) CreateBank(ctx context.Context, b bank.Bank) (bank.Bank, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now

	_, err := s.querier(ctx).ExecContext(ctx, `
		INSERT INTO banks (id, name, code, admin_user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, b.ID, b.Name, b.Code, b.AdminUserID, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return bank.Bank{}, wrapInsertErr("BANK", "BANK_CODE_TAKEN", "a bank with this code already exists", err)
	}
	return b, nil
}

func (s *Store) UpdateBank(ctx context.Context, b bank.Bank) (bank.Bank, error) {
	b.UpdatedAt = time.Now().UTC()
	_, err := s.querier(ctx).ExecContext(ctx, `
		UPDATE banks SET name=$2, code=$3, admin_user_id=$4, updated_at=$5 WHERE id=$1
	`, b.ID, b.Name, b.Code, b.AdminUserID, b.UpdatedAt)
	if err != nil {
		return bank.Bank{}, domainerrors.Wrap(domainerrors.CodeInternal, "BANK_UPDATE_FAILED", "failed to update bank", err)
	}
	return s.GetBank(ctx, b.ID)
}

func (s *Store) GetBank(ctx context.Context, id string) (bank.Bank, error) {
	var row bankRow
	err := s.querier(ctx).GetContext(ctx, &row, `SELECT * FROM banks WHERE id=$1`, id)
	if err != nil {
		return bank.Bank{}, wrapQueryErr("bank", id, err)
	}
	return row.toDomain(), nil
}

func (s *Store) GetBankByCode(ctx context.Context, code string) (bank.Bank, error) {
	var row bankRow
	err := s.querier(ctx).GetContext(ctx, &row, `SELECT * FROM banks WHERE code=$1`, code)
	if err != nil {
		return bank.Bank{}, wrapQueryErr("bank", code, err)
	}
	return row.toDomain(), nil
}

func (s *Store) ListBanks(ctx context.Context) ([]bank.Bank, error) {
	var rows []bankRow
	if err := s.querier(ctx).SelectContext(ctx, &rows, `SELECT * FROM banks ORDER BY created_at`); err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "BANK_LIST_FAILED", "failed to list banks", err)
	}
	out := make([]bank.Bank, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}
