package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/gabrieudev/marcahora/internal/models"
)

// setupMockDB wires gorm onto a sqlmock connection so the exact statements
// issued inside the transfer transaction can be asserted.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn: sqlDB,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return db, mock
}

func TestTransferOwnership_StatementsAndCommit(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMemberRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "organization_members" SET "is_owner"=\$1 WHERE organization_id = \$2 AND user_id = \$3`).
		WithArgs(false, "org-1", "user-old").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "organization_members" SET "is_owner"=\$1,"role"=\$2 WHERE organization_id = \$3 AND user_id = \$4`).
		WithArgs(true, models.RoleAdmin, "org-1", "user-new").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "organizations" SET "owner_id"=\$1,"updated_at"=\$2 WHERE id = \$3`).
		WithArgs("user-new", sqlmock.AnyArg(), "org-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "organization_members" WHERE organization_id = \$1 AND user_id = \$2`).
		WithArgs("org-1", "user-new", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "organization_id", "user_id", "role", "is_owner", "fl_active"}).
			AddRow("member-2", "org-1", "user-new", "admin", true, true))
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"."id" = \$1`).
		WithArgs("user-new").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).
			AddRow("user-new", "Nova Dona", "nova@marcahora.com"))
	mock.ExpectCommit()

	member, err := repo.TransferOwnership("org-1", "user-old", "user-new")
	require.NoError(t, err)
	require.True(t, member.IsOwner)
	require.Equal(t, models.RoleAdmin, member.Role)
	require.Equal(t, "user-new", member.UserID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferOwnership_RollsBackOnMissingTarget(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMemberRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "organization_members" SET "is_owner"=\$1 WHERE organization_id = \$2 AND user_id = \$3`).
		WithArgs(false, "org-1", "user-old").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "organization_members" SET "is_owner"=\$1,"role"=\$2 WHERE organization_id = \$3 AND user_id = \$4`).
		WithArgs(true, models.RoleAdmin, "org-1", "user-gone").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.TransferOwnership("org-1", "user-old", "user-gone")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// No organizations update and no commit: the cleared owner flag is
	// rolled back together with everything else.
	require.NoError(t, mock.ExpectationsWereMet())
}
