package database

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		username VARCHAR(150) UNIQUE NOT NULL,
		email VARCHAR(254) UNIQUE NOT NULL,
		first_name VARCHAR(150) NOT NULL DEFAULT '',
		last_name VARCHAR(150) NOT NULL DEFAULT '',
		password_hash VARCHAR(255),
		is_staff BOOLEAN NOT NULL DEFAULT FALSE,
		date_joined TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		last_login TIMESTAMP WITH TIME ZONE,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	// Linked third-party identities. (provider, uid) is the reconciliation key.
	`CREATE TABLE IF NOT EXISTS social_accounts (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		provider VARCHAR(30) NOT NULL,
		uid VARCHAR(191) NOT NULL,
		extra_data JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(provider, uid),
		UNIQUE(user_id, provider)
	)`,

	`CREATE TABLE IF NOT EXISTS auth_tokens (
		key VARCHAR(40) PRIMARY KEY,
		user_id UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS profiles (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		phone VARCHAR(15),
		bio VARCHAR(500) NOT NULL DEFAULT '',
		location VARCHAR(100) NOT NULL DEFAULT '',
		profile_picture VARCHAR(255),
		volunteer_skills JSONB NOT NULL DEFAULT '[]',
		volunteer_interests JSONB NOT NULL DEFAULT '[]',
		availability JSONB NOT NULL DEFAULT '{}',
		volunteer_hours INTEGER NOT NULL DEFAULT 0,
		certifications JSONB NOT NULL DEFAULT '[]',
		notification_preferences JSONB NOT NULL DEFAULT '{}',
		privacy_settings JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS volunteer_opportunities (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		title VARCHAR(200) NOT NULL,
		description TEXT NOT NULL,
		organization VARCHAR(200) NOT NULL,
		location VARCHAR(200) NOT NULL,
		skills_required JSONB NOT NULL DEFAULT '[]',
		date_posted TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		deadline TIMESTAMP WITH TIME ZONE,
		hours_required INTEGER NOT NULL DEFAULT 0,
		created_by UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE
	)`,

	`CREATE TABLE IF NOT EXISTS volunteer_history (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		opportunity_id UUID NOT NULL REFERENCES volunteer_opportunities(id) ON DELETE CASCADE,
		hours_contributed INTEGER NOT NULL DEFAULT 0,
		start_date TIMESTAMP WITH TIME ZONE NOT NULL,
		end_date TIMESTAMP WITH TIME ZONE,
		status VARCHAR(50) NOT NULL DEFAULT 'applied',
		feedback TEXT NOT NULL DEFAULT '',
		rating INTEGER CHECK (rating BETWEEN 1 AND 5),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(user_id, opportunity_id)
	)`,

	`CREATE TABLE IF NOT EXISTS contact_submissions (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		first_name VARCHAR(100) NOT NULL,
		last_name VARCHAR(100) NOT NULL,
		email VARCHAR(254) NOT NULL,
		message TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_volunteer_opportunities_date_posted ON volunteer_opportunities(date_posted DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_volunteer_history_user_id ON volunteer_history(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_contact_submissions_created_at ON contact_submissions(created_at DESC)`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
