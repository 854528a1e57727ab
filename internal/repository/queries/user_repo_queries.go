package queries

const (
	QueryCreateUser = `
		INSERT INTO users (username, email, telegram_url, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id;
	`
	QueryGetUserByID = `
		SELECT id, username, email, telegram_url, password_hash, role, created_at, updated_at
		FROM users
		WHERE id = $1;
	`
	QueryGetUserByUsername = `
		SELECT id, username, email, telegram_url, password_hash, role, created_at, updated_at
		FROM users
		WHERE username = $1;
	`
	QueryListUsers = `
		SELECT id, username, email, telegram_url, password_hash, role, created_at, updated_at
		FROM users
		ORDER BY id;
	`
	QueryGetUsersByIDs = `
		SELECT id, username, email, telegram_url, password_hash, role, created_at, updated_at
		FROM users
		WHERE id = ANY($1)
		ORDER BY id;
	`
	QueryExistsUserByUsername = `SELECT 1 FROM users WHERE username = $1;`
	QueryExistsUserByEmail    = `SELECT 1 FROM users WHERE email = $1;`
	QueryUpdateUser           = `
		UPDATE users
		SET username = $2, email = $3, telegram_url = $4, password_hash = $5, role = $6, updated_at = $7
		WHERE id = $1;
	`
	QueryDeleteUser = `DELETE FROM users WHERE id = $1;`

	// Контакты: все контрагенты по сообщениям, в обе стороны.
	QueryContactIDs = `
		SELECT DISTINCT contact_id FROM (
			SELECT sender_id AS contact_id FROM messages WHERE recipient_id = $1
			UNION
			SELECT recipient_id AS contact_id FROM messages WHERE sender_id = $1
		) AS contacts
		WHERE contact_id <> $1;
	`
)
