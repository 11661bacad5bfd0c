package domain

// Models lists every persisted type in migration order.
func Models() []any {
	return []any{
		&User{},
		&VerificationCode{},
		&TimeSlot{},
		&Order{},
		&QuestionContent{},
		&OrderLog{},
		&Endorsement{},
		&Rating{},
		&Upload{},
		&Course{},
		&Challenge{},
		&ChallengeAttempt{},
	}
}
