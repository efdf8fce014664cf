package plans

import "graphmigrate/src/domain"

// Social migra a rede social a partir de arquivos CSV: usuários, tweets
// e um arquivo único de relacionamentos entre tweets discriminado pela
// coluna type (RETWEET, REPLY, MENTION).
func Social() domain.Plan {
	return domain.Plan{
		Name: "social",
		Schema: []string{
			"CREATE CONSTRAINT user_id_unique IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE",
			"CREATE CONSTRAINT tweet_id_unique IF NOT EXISTS FOR (t:Tweet) REQUIRE t.id IS UNIQUE",
			"CREATE INDEX user_username_idx IF NOT EXISTS FOR (u:User) ON (u.username)",
			"CREATE INDEX tweet_created_at_idx IF NOT EXISTS FOR (t:Tweet) ON (t.createdAt)",
		},
		Entities: []domain.EntitySpec{
			{
				Label:  "User",
				Source: domain.Source{Kind: domain.SourceCSV, Name: "users.csv"},
				Key:    domain.FieldSpec{Name: "id", Type: domain.FieldInt},
				Properties: []domain.FieldSpec{
					{Name: "name", Type: domain.FieldString},
					{Name: "username", Type: domain.FieldString},
					{Name: "registeredAt", Type: domain.FieldDate},
				},
			},
			{
				Label:  "Tweet",
				Source: domain.Source{Kind: domain.SourceCSV, Name: "tweets.csv"},
				Key:    domain.FieldSpec{Name: "id", Type: domain.FieldInt},
				Properties: []domain.FieldSpec{
					{Name: "text", Type: domain.FieldString},
					{Name: "createdAt", Type: domain.FieldDateTime},
				},
			},
		},
		Relationships: []domain.RelationshipSpec{
			{
				Type:   "FOLLOWS",
				Source: domain.Source{Kind: domain.SourceCSV, Name: "followers.csv"},
				Start:  domain.EndpointSpec{Label: "User", Column: "sourceId"},
				End:    domain.EndpointSpec{Label: "User", Column: "targetId"},
			},
			{
				// Autoria sai do próprio snapshot de tweets.
				Type:   "PUBLISH",
				Source: domain.Source{Kind: domain.SourceCSV, Name: "tweets.csv"},
				Start:  domain.EndpointSpec{Label: "User", Column: "authorId"},
				End:    domain.EndpointSpec{Label: "Tweet", Column: "id"},
			},
			{
				Type:          "RETWEETS",
				Source:        domain.Source{Kind: domain.SourceCSV, Name: "tweet_relationships.csv"},
				Start:         domain.EndpointSpec{Label: "Tweet", Column: "sourceId"},
				End:           domain.EndpointSpec{Label: "Tweet", Column: "targetId"},
				Discriminator: &domain.Discriminator{Column: "type", Value: "RETWEET"},
			},
			{
				Type:          "IN_REPLY_TO",
				Source:        domain.Source{Kind: domain.SourceCSV, Name: "tweet_relationships.csv"},
				Start:         domain.EndpointSpec{Label: "Tweet", Column: "sourceId"},
				End:           domain.EndpointSpec{Label: "Tweet", Column: "targetId"},
				Discriminator: &domain.Discriminator{Column: "type", Value: "REPLY"},
			},
			{
				Type:          "MENTIONS",
				Source:        domain.Source{Kind: domain.SourceCSV, Name: "tweet_relationships.csv"},
				Start:         domain.EndpointSpec{Label: "Tweet", Column: "sourceId"},
				End:           domain.EndpointSpec{Label: "User", Column: "mentionedUserId"},
				Discriminator: &domain.Discriminator{Column: "type", Value: "MENTION"},
			},
		},
	}
}
