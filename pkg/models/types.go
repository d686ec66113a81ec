package models

import (
	"time"
)

/*
LOAD → enregistrements bruts tels qu'ils sortent du fichier ou de la base.
*/

// PurchaseRecord représente une ligne client du jeu de données FLO, avant toute dérivation.
type PurchaseRecord struct {
	MasterID             string
	OrderChannel         string
	LastOrderChannel     string
	FirstOrderDate       string
	LastOrderDate        string
	LastOrderDateOnline  string
	LastOrderDateOffline string
	OrderNumOnline       int
	OrderNumOffline      int
	ValueOnline          float64
	ValueOffline         float64
	InterestedCategories []string
}

// Columns est le schéma d'entrée attendu (noms des colonnes du jeu FLO).
var Columns = []string{
	"master_id",
	"order_channel",
	"last_order_channel",
	"first_order_date",
	"last_order_date",
	"last_order_date_online",
	"last_order_date_offline",
	"order_num_total_ever_online",
	"order_num_total_ever_offline",
	"customer_value_total_ever_offline",
	"customer_value_total_ever_online",
	"interested_in_categories_12",
}

/*
DERIVE → enregistrement enrichi (1:1 avec PurchaseRecord).
*/

// EnrichedRecord ajoute les totaux omnicanal et les dates normalisées (jour calendaire UTC).
type EnrichedRecord struct {
	PurchaseRecord

	TotalTransactionCount int
	TotalSpend            float64

	FirstOrderAt       time.Time
	LastOrderAt        time.Time
	LastOrderOnlineAt  time.Time
	LastOrderOfflineAt time.Time
}

/*
COMPUTE → profil RFM, une ligne par client.
*/

// Segment est l'un des dix libellés marketing.
type Segment string

const (
	SegmentHibernating        Segment = "hibernating"
	SegmentAtRisk             Segment = "at_risk"
	SegmentCantLoose          Segment = "cant_loose"
	SegmentAboutToSleep       Segment = "about_to_sleep"
	SegmentNeedAttention      Segment = "need_attention"
	SegmentLoyalCustomers     Segment = "loyal_customers"
	SegmentPromising          Segment = "promising"
	SegmentNewCustomers       Segment = "new_customers"
	SegmentPotentialLoyalists Segment = "potential_loyalists"
	SegmentChampions          Segment = "champions"
)

// Profile contient les métriques et scores RFM d'un client.
type Profile struct {
	MasterID             string   `json:"master_id"`
	OrderChannel         string   `json:"order_channel"`
	Recency              int      `json:"recency"`
	Frequency            int      `json:"frequency"`
	Monetary             float64  `json:"monetary"`
	InterestedCategories []string `json:"interested_categories"`

	RecencyScore   int     `json:"recency_score"`
	FrequencyScore int     `json:"frequency_score"`
	MonetaryScore  int     `json:"monetary_score"`
	CompositeCode  string  `json:"composite_code"`
	Segment        Segment `json:"segment"`
}

// Selection est la liste ordonnée des clients retenus par une règle de ciblage.
type Selection struct {
	Rule        string   `json:"rule"`
	CustomerIDs []string `json:"customer_ids"`
}

// Result regroupe tout ce qu'une exécution du pipeline produit.
type Result struct {
	RunID        string      `json:"run_id"`
	AnalysisDate time.Time   `json:"analysis_date"`
	RecordsRead  int         `json:"records_read"`
	Profiles     []Profile   `json:"-"`
	Selections   []Selection `json:"selections"`
}

/*
CONFIG → paramètres d'une exécution
*/

// AggregationMode fixe le traitement des clients présents sur plusieurs lignes.
type AggregationMode string

const (
	AggregationSum    AggregationMode = "sum"    // fréquence et montant additionnés sur le groupe
	AggregationStrict AggregationMode = "strict" // un identifiant répété est une erreur
)

// Precedence fixe l'évaluation de la règle A.
type Precedence string

const (
	PrecedenceLiteral Precedence = "literal" // champions OR (loyal_customers AND women)
	PrecedenceGrouped Precedence = "grouped" // (champions OR loyal_customers) AND women
)

// CategoryMarkers sont les libellés de catégorie recherchés dans interested_in_categories_12.
type CategoryMarkers struct {
	Women    string
	Men      string
	Children string
}

// Config contient les paramètres passés au pipeline.
type Config struct {
	AnalysisDate    time.Time // date de référence, en UTC ; zéro = max(last_order_date) + AnalysisOffset jours
	AnalysisOffset  int       // jours ajoutés à la dernière date observée quand AnalysisDate est zéro
	Aggregation     AggregationMode
	RuleAPrecedence Precedence
	Markers         CategoryMarkers
	Verbose         bool // Flag pour activer la barre de progression.
}
