// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package topics holds the static content catalog: the per-category topic
// seeds the scheduler posts about, the hashtag pools the generator draws
// from, and the fallback templates used when the text provider is down.
package topics

import "pulsepost/internal/models"

// seeds maps each category to its topic seeds. Every seed becomes a Topic
// row at first startup.
var seeds = map[models.Category][]string{
	models.CategoryBitcoin: {
		"Bitcoin basics", "Bitcoin price analysis", "Bitcoin adoption",
		"Bitcoin mining", "Bitcoin security", "Bitcoin wallets",
		"Bitcoin history", "Bitcoin economics", "Bitcoin vs traditional finance",
		"Bitcoin regulation",
	},
	models.CategoryLightning: {
		"Lightning Network basics", "Lightning Network nodes", "Lightning Network channels",
		"Lightning Network wallets", "Lightning Network payments", "Lightning Network apps",
		"Lightning Network security", "Lightning Network adoption", "Lightning Network vs on-chain",
		"Lightning Network development",
	},
	models.CategoryNostr: {
		"Nostr basics", "Nostr relays", "Nostr clients", "Nostr identity",
		"Nostr vs centralized social media", "Nostr development", "Nostr adoption",
		"Nostr security", "Nostr integration", "Nostr communities",
	},
	models.CategoryPrivacy: {
		"Online privacy basics", "Privacy tools", "Privacy best practices",
		"Privacy regulations", "Privacy vs convenience", "Privacy for Bitcoin users",
		"Privacy for Lightning users", "Privacy for Nostr users", "Privacy threats",
		"Privacy future",
	},
	models.CategoryNodeSetup: {
		"Bitcoin node setup", "Lightning node setup", "Nostr relay setup",
		"Node hardware requirements", "Node software configuration", "Node maintenance",
		"Node security", "Node backups", "Node monitoring", "Node troubleshooting",
	},
}

// hashtagPools maps each category to its pool of topically relevant tags.
// The generator shuffles a pool and takes the configured count per post.
var hashtagPools = map[models.Category][]string{
	models.CategoryBitcoin: {
		"#Bitcoin", "#BTC", "#Cryptocurrency", "#Crypto", "#DigitalGold",
		"#BitcoinHalving", "#HODL", "#Satoshi", "#Blockchain", "#BitcoinMining",
		"#CryptoTrading", "#BitcoinWallet", "#BitcoinSecurity", "#BitcoinAdoption",
		"#BitcoinEducation", "#SoundMoney", "#BitcoinDevelopment", "#BitcoinTech",
		"#Hyperbitcoinization", "#BTCPayServer", "#BitcoinNode", "#BitcoinCore",
		"#BitcoinPrice", "#BitcoinInvesting", "#BitcoinCommunity",
	},
	models.CategoryLightning: {
		"#LightningNetwork", "#LN", "#Bitcoin", "#BTC", "#LightningNode",
		"#LightningWallet", "#LightningPayments", "#LightningApps", "#LightningDev",
		"#LightningTip", "#LightningChannels", "#LightningLabs", "#LightningLoop",
		"#LightningPool", "#LightningTerminal", "#LightningAddress", "#LNURL",
		"#LightningPrivacy", "#LightningAdoption", "#InstantPayments", "#Micropayments",
		"#LightningInvoice", "#LightningTorch", "#NodeRunners", "#LightningHackday",
	},
	models.CategoryNostr: {
		"#Nostr", "#NostrRelay", "#NostrClient", "#NostrProtocol", "#NostrDev",
		"#NostrNIP", "#NostrEvents", "#NostrPubkey", "#NostrPrivkey", "#NostrZaps",
		"#NostrNotes", "#NostrDMs", "#NostrCommunity", "#NostrAdoption", "#NostrApps",
		"#DecentralizedSocial", "#NostrTools", "#NostrHackathon", "#NostrIntegration",
		"#NostrIdentity", "#NostrPrivacy", "#NostrSecurity", "#NostrUI", "#NostrUX",
		"#NostrStandards",
	},
	models.CategoryPrivacy: {
		"#Privacy", "#OnlinePrivacy", "#DigitalPrivacy", "#PrivacyMatters", "#PrivacyTools",
		"#PrivacyByDesign", "#DataPrivacy", "#PrivacyRights", "#PrivacyProtection", "#OPSEC",
		"#PrivacyAdvocate", "#PrivacyAwareness", "#PrivacyTips", "#PrivacyTech", "#Encryption",
		"#EndToEndEncryption", "#VPN", "#Tor", "#PrivacyFocus", "#PrivacyFirst",
		"#PrivacyPolicy", "#PrivacySettings", "#PrivacyControl", "#PrivacyEducation",
		"#SecureMessaging",
	},
	models.CategoryNodeSetup: {
		"#NodeSetup", "#BitcoinNode", "#LightningNode", "#NostrRelay", "#SelfHosted",
		"#NodeRunner", "#FullNode", "#NodeMaintenance", "#NodeSecurity", "#NodeBackup",
		"#NodeMonitoring", "#RaspberryPi", "#UmbrelNode", "#StartOSNode", "#MyNodeBTC",
		"#DIYNode", "#NodeHardware", "#NodeSoftware", "#NodeConfiguration", "#NodeUpgrade",
		"#NodeTroubleshooting", "#NodePerformance", "#NodeSync", "#NodeCommunity",
		"#SelfSovereignty",
	},
}

// fallbackTemplates are filled with {topic} and {category} when the text
// provider is unavailable. Pure local computation; cannot fail.
var fallbackTemplates = []string{
	"Exploring the world of {topic} today. What's your experience with it?",
	"Did you know? {topic} is changing how we think about digital sovereignty. Learn more!",
	"The future of {topic} looks promising. Here's why it matters for everyone in the {category} space.",
	"{topic} offers incredible possibilities for freedom and privacy. Are you taking advantage of it?",
	"Just set up a new {topic} configuration. Game-changer for my {category} experience!",
	"Thinking about {topic} and its implications for the future of {category}. Thoughts?",
	"Today's focus: {topic}. Essential knowledge for anyone interested in {category}.",
	"{topic} might be the most underrated aspect of {category}. Change my mind!",
	"The evolution of {topic} shows how far we've come in the {category} ecosystem.",
	"Security tip: Always consider {topic} when working with {category} technologies.",
}

// Seeds returns the topic seeds for a category.
func Seeds(cat models.Category) []string {
	return seeds[cat]
}

// Hashtags returns the hashtag pool for a category. Unknown categories
// fall back to the Bitcoin pool so the generator always has tags to
// draw from.
func Hashtags(cat models.Category) []string {
	if pool, ok := hashtagPools[cat]; ok {
		return pool
	}
	return hashtagPools[models.CategoryBitcoin]
}

// AllHashtags returns every pool concatenated, used to pad short pools.
func AllHashtags(except models.Category) []string {
	var out []string
	for _, cat := range models.Categories() {
		if cat == except {
			continue
		}
		out = append(out, hashtagPools[cat]...)
	}
	return out
}

// Templates returns the fallback body templates.
func Templates() []string {
	return fallbackTemplates
}

// DefaultTopics expands the catalog into the Topic rows seeded at first
// startup: every seed enabled with priority 1.
func DefaultTopics() []models.Topic {
	var out []models.Topic
	for _, cat := range models.Categories() {
		for _, name := range seeds[cat] {
			out = append(out, models.Topic{
				Name:     name,
				Category: cat,
				Enabled:  true,
				Priority: 1,
			})
		}
	}
	return out
}
