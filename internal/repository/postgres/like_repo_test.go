package postgres

import (
	"context"
	"database/sql"
	"testing"

	"volunteerhub/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestLikeRepository_Toggle(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		targetType string
		mock       func(mock sqlmock.Sqlmock)
		wantStatus int
		wantLikes  int
		wantErr    error
	}{
		{
			name:       "first like inserts row and increments",
			targetType: domain.LikeTargetPost,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT status FROM likes`).
					WithArgs("u1", "post", "p1").
					WillReturnError(sql.ErrNoRows)
				mock.ExpectExec(`INSERT INTO likes`).
					WithArgs("u1", "post", "p1").
					WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectQuery(`UPDATE posts SET likes = GREATEST\(likes \+ \$1, 0\)`).
					WithArgs(1, "p1").
					WillReturnRows(sqlmock.NewRows([]string{"likes"}).AddRow(1))
				mock.ExpectCommit()
			},
			wantStatus: 1,
			wantLikes:  1,
		},
		{
			name:       "second toggle unlikes and decrements",
			targetType: domain.LikeTargetPost,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT status FROM likes`).
					WithArgs("u1", "post", "p1").
					WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(1))
				mock.ExpectExec(`UPDATE likes SET status = \$1`).
					WithArgs(0, "u1", "post", "p1").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectQuery(`UPDATE posts SET likes = GREATEST\(likes \+ \$1, 0\)`).
					WithArgs(-1, "p1").
					WillReturnRows(sqlmock.NewRows([]string{"likes"}).AddRow(0))
				mock.ExpectCommit()
			},
			wantStatus: 0,
			wantLikes:  0,
		},
		{
			name:       "event target updates events table",
			targetType: domain.LikeTargetEvent,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT status FROM likes`).
					WithArgs("u1", "event", "p1").
					WillReturnError(sql.ErrNoRows)
				mock.ExpectExec(`INSERT INTO likes`).
					WithArgs("u1", "event", "p1").
					WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectQuery(`UPDATE events SET likes = GREATEST\(likes \+ \$1, 0\)`).
					WithArgs(1, "p1").
					WillReturnRows(sqlmock.NewRows([]string{"likes"}).AddRow(4))
				mock.ExpectCommit()
			},
			wantStatus: 1,
			wantLikes:  4,
		},
		{
			name:       "unknown target",
			targetType: "comment",
			mock:       func(mock sqlmock.Sqlmock) {},
			wantErr:    domain.ErrInvalidInput,
		},
		{
			name:       "missing target row",
			targetType: domain.LikeTargetPost,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT status FROM likes`).
					WithArgs("u1", "post", "p1").
					WillReturnError(sql.ErrNoRows)
				mock.ExpectExec(`INSERT INTO likes`).
					WithArgs("u1", "post", "p1").
					WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectQuery(`UPDATE posts SET likes`).
					WithArgs(1, "p1").
					WillReturnError(sql.ErrNoRows)
				mock.ExpectRollback()
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewLikeRepository(db)
			status, likes, err := repo.Toggle(ctx, "u1", tt.targetType, "p1")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				require.Equal(t, tt.wantStatus, status)
				require.Equal(t, tt.wantLikes, likes)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
