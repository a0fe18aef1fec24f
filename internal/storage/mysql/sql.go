package mysql

// -----------------------------------------------------------------------------
// AGENTS
// -----------------------------------------------------------------------------

const agentCols = `id, full_name, email, phone, region, created_at, updated_at`

const listAgentsSQL = `SELECT ` + agentCols + ` FROM agents ORDER BY full_name, id LIMIT ? OFFSET ?`

const getAgentSQL = `SELECT ` + agentCols + ` FROM agents WHERE id = ?`

const insertAgentSQL = `
INSERT INTO agents (full_name, email, phone, region)
VALUES (?, ?, ?, ?)
`

const updateAgentSQL = `
UPDATE agents
SET full_name = ?, email = ?, phone = ?, region = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`

// -----------------------------------------------------------------------------
// COMPANY INFO
// -----------------------------------------------------------------------------

const companyCols = `id, legal_name, short_name, description, website_url, email, phone, address, created_at, updated_at`

const latestCompanySQL = `SELECT ` + companyCols + ` FROM company_info ORDER BY id DESC LIMIT 1`

const getCompanySQL = `SELECT ` + companyCols + ` FROM company_info WHERE id = ?`

const insertCompanySQL = `
INSERT INTO company_info (legal_name, short_name, description, website_url, email, phone, address)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

const updateCompanySQL = `
UPDATE company_info
SET legal_name = ?, short_name = ?, description = ?, website_url = ?,
    email = ?, phone = ?, address = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`

// -----------------------------------------------------------------------------
// INTERACTIONS
// -----------------------------------------------------------------------------

const interactionCols = `id, session_id, channel, language, user_message, bot_response, user_id, agent_id, created_at`

const insertInteractionSQL = `
INSERT INTO interactions (session_id, channel, language, user_message, bot_response, user_id, agent_id)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

const getInteractionSQL = `SELECT ` + interactionCols + ` FROM interactions WHERE id = ?`

const listSessionInteractionsSQL = `
SELECT ` + interactionCols + `
FROM interactions
WHERE session_id = ?
ORDER BY created_at ASC, id ASC
LIMIT ?
`

// -----------------------------------------------------------------------------
// LEADS
// -----------------------------------------------------------------------------

const insertLeadSQL = `
INSERT INTO leads (id, first_name, last_name, email, phone, source)
VALUES (?, ?, ?, ?, ?, ?)
`

const getLeadCreatedSQL = `SELECT created_at FROM leads WHERE id = ?`

// -----------------------------------------------------------------------------
// PROPERTIES
// -----------------------------------------------------------------------------

const propertyCols = `id, title, description, price, price_from, location, features, agent_id,
  beds, baths, car_spaces, est_completion, video_url, virtual_tour_url,
  brochure_url, floor_plan_url, price_list_url, created_at, updated_at`

const selectPropertiesSQL = `SELECT ` + propertyCols + ` FROM properties`

const getPropertySQL = selectPropertiesSQL + ` WHERE id = ?`

const insertPropertySQL = `
INSERT INTO properties
  (id, title, description, price, price_from, location, features, agent_id,
   beds, baths, car_spaces, est_completion, video_url, virtual_tour_url,
   brochure_url, floor_plan_url, price_list_url)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const updatePropertySQL = `
UPDATE properties SET
  title = ?, description = ?, price = ?, price_from = ?, location = ?, features = ?, agent_id = ?,
  beds = ?, baths = ?, car_spaces = ?, est_completion = ?, video_url = ?, virtual_tour_url = ?,
  brochure_url = ?, floor_plan_url = ?, price_list_url = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`

// Search expressions. The features bag is the fallback for rows whose columns are empty.
const (
	propertyPriceExpr = `COALESCE(price_from, price)`
	propertyBedsExpr  = `COALESCE(beds, CAST(JSON_UNQUOTE(JSON_EXTRACT(features, '$.beds')) AS SIGNED))`
	propertyBathsExpr = `COALESCE(baths, CAST(JSON_UNQUOTE(JSON_EXTRACT(features, '$.baths')) AS SIGNED))`
	propertyTypeExpr  = `LOWER(JSON_UNQUOTE(JSON_EXTRACT(features, '$.type')))`
)

// -----------------------------------------------------------------------------
// USERS
// -----------------------------------------------------------------------------

const userCols = `id, username, full_name, email, phone, hashed_password, is_active, is_admin, created_at`

const getUserSQL = `SELECT ` + userCols + ` FROM users WHERE id = ?`

const getUserByEmailSQL = `SELECT ` + userCols + ` FROM users WHERE email = ?`

const insertUserSQL = `
INSERT INTO users (username, full_name, email, phone, hashed_password, is_active, is_admin)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

const updateUserContactSQL = `
UPDATE users
SET full_name = COALESCE(?, full_name), phone = COALESCE(?, phone)
WHERE id = ?
`

// -----------------------------------------------------------------------------
// LISTINGS (ETL)
// -----------------------------------------------------------------------------

// id = LAST_INSERT_ID(id) makes LastInsertId report the existing row on update.
const upsertListingSQL = `
INSERT INTO listings
  (wp_id, slug, status, title, description_html, description_text, permalink, region,
   categories, featured_image_url, gallery_image_urls, wp_created, wp_modified,
   listing_type, location, price_from, beds, baths, car_spaces, completed_percent,
   est_completion, address, video_url, virtual_tour_url, last_modified_note, attributes, image_url)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  id                 = LAST_INSERT_ID(id),
  slug               = VALUES(slug),
  status             = VALUES(status),
  title              = VALUES(title),
  description_html   = VALUES(description_html),
  description_text   = VALUES(description_text),
  permalink          = COALESCE(VALUES(permalink), listings.permalink),
  region             = COALESCE(VALUES(region), listings.region),
  categories         = COALESCE(VALUES(categories), listings.categories),
  featured_image_url = COALESCE(VALUES(featured_image_url), listings.featured_image_url),
  gallery_image_urls = COALESCE(VALUES(gallery_image_urls), listings.gallery_image_urls),
  wp_created         = COALESCE(VALUES(wp_created), listings.wp_created),
  wp_modified        = COALESCE(VALUES(wp_modified), listings.wp_modified),
  listing_type       = COALESCE(VALUES(listing_type), listings.listing_type),
  location           = COALESCE(VALUES(location), listings.location),
  price_from         = COALESCE(VALUES(price_from), listings.price_from),
  beds               = COALESCE(VALUES(beds), listings.beds),
  baths              = COALESCE(VALUES(baths), listings.baths),
  car_spaces         = COALESCE(VALUES(car_spaces), listings.car_spaces),
  completed_percent  = COALESCE(VALUES(completed_percent), listings.completed_percent),
  est_completion     = COALESCE(VALUES(est_completion), listings.est_completion),
  address            = COALESCE(VALUES(address), listings.address),
  video_url          = COALESCE(VALUES(video_url), listings.video_url),
  virtual_tour_url   = COALESCE(VALUES(virtual_tour_url), listings.virtual_tour_url),
  last_modified_note = COALESCE(VALUES(last_modified_note), listings.last_modified_note),
  attributes         = COALESCE(VALUES(attributes), listings.attributes),
  image_url          = COALESCE(VALUES(image_url), listings.image_url),
  updated_at         = CURRENT_TIMESTAMP
`

const deleteListingImagesSQL = `DELETE FROM listing_images WHERE listing_id = ?`

const deleteListingDocumentsSQL = `DELETE FROM listing_documents WHERE listing_id = ?`

const insertListingImagesPrefix = "INSERT INTO listing_images\n  (listing_id, remote_url, alt_text, width, height, position, is_featured)\nVALUES "

const insertListingDocumentsPrefix = "INSERT INTO listing_documents\n  (listing_id, doc_type, remote_url, filename, mime_type)\nVALUES "

const listListingsTextSQL = `
SELECT id, wp_id, slug, status, title, description_html, description_text, region
FROM listings
ORDER BY id
`

const updateListingTextSQL = `
UPDATE listings
SET slug = ?, status = ?, title = ?, description_html = ?, description_text = ?, region = ?,
    updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`

// -----------------------------------------------------------------------------
// HEALTH
// -----------------------------------------------------------------------------

var countedTables = []string{"agents", "properties", "users", "interactions"}
