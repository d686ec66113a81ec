package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"rfm-segmentation/pkg/dataset"
	apperrors "rfm-segmentation/pkg/errors"
	"rfm-segmentation/pkg/models"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

var tableNameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Open DSN mariadb://, mysql://, postgres:// ou DSN MySQL natif → (*sql.DB, nom du driver)
func Open(dsn string) (*sql.DB, string, error) {
	driver, native, err := toDriverDSN(dsn)
	if err != nil {
		return nil, "", err
	}
	db, err := sql.Open(driver, native)
	if err != nil {
		return nil, "", err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, driver, nil
}

func toDriverDSN(dsn string) (string, string, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "postgres", dsn, nil
	}
	mysqlDSN, err := toMySQLDSN(dsn)
	if err != nil {
		return "", "", err
	}
	return "mysql", mysqlDSN, nil
}

func toMySQLDSN(dsn string) (string, error) {
	if strings.HasPrefix(dsn, "mariadb://") || strings.HasPrefix(dsn, "mysql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("parse dsn: %w", err)
		}
		user := ""
		pass := ""
		if u.User != nil {
			user = u.User.Username()
			pw, _ := u.User.Password()
			pass = pw
		}
		host := u.Host
		db := strings.TrimPrefix(u.Path, "/")
		if user == "" || host == "" || db == "" {
			return "", fmt.Errorf("dsn incomplet (user/host/db)")
		}
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&interpolateParams=true",
			user, pass, host, db), nil
	}
	return dsn, nil
}

// SQLSource lit les enregistrements clients depuis une table au format FLO.
type SQLSource struct {
	db    *sql.DB
	table string
}

func NewSQLSource(db *sql.DB, table string) *SQLSource {
	return &SQLSource{db: db, table: table}
}

func (s *SQLSource) Name() string {
	return "sql:" + s.table
}

// Load lit toute la table, triée par master_id pour un ordre reproductible d'une exécution à l'autre.
func (s *SQLSource) Load(ctx context.Context) ([]models.PurchaseRecord, error) {
	if !tableNameRe.MatchString(s.table) {
		return nil, apperrors.NewSchemaMismatchError(fmt.Sprintf("table invalide: %q", s.table))
	}

	q := fmt.Sprintf(`
		SELECT %s
		FROM %s
		ORDER BY master_id
	`, strings.Join(models.Columns, ", "), s.table)

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, apperrors.NewLoadFailedError(s.table, err)
	}
	defer rows.Close()

	var records []models.PurchaseRecord
	for rows.Next() {
		var (
			r                         models.PurchaseRecord
			firstDate, lastDate       sql.NullString
			lastOnline, lastOffline   sql.NullString
			onlineCount, offlineCount float64
			categories                sql.NullString
		)
		if err := rows.Scan(
			&r.MasterID, &r.OrderChannel, &r.LastOrderChannel,
			&firstDate, &lastDate, &lastOnline, &lastOffline,
			&onlineCount, &offlineCount,
			&r.ValueOffline, &r.ValueOnline,
			&categories,
		); err != nil {
			return nil, apperrors.NewLoadFailedError(s.table, err)
		}

		r.FirstOrderDate = firstDate.String
		r.LastOrderDate = lastDate.String
		r.LastOrderDateOnline = lastOnline.String
		r.LastOrderDateOffline = lastOffline.String

		if r.OrderNumOnline, err = dataset.CountFromFloat(onlineCount); err != nil {
			return nil, apperrors.NewSchemaMismatchError(fmt.Sprintf("customer %s order_num_total_ever_online: %v", r.MasterID, err))
		}
		if r.OrderNumOffline, err = dataset.CountFromFloat(offlineCount); err != nil {
			return nil, apperrors.NewSchemaMismatchError(fmt.Sprintf("customer %s order_num_total_ever_offline: %v", r.MasterID, err))
		}
		r.InterestedCategories = dataset.ParseCategories(categories.String)

		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewLoadFailedError(s.table, err)
	}

	return records, nil
}
